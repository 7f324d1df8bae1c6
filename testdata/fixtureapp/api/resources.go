package api

type TokenResource struct{}

// Post creates a token.
//
// ---
// summary: Create a token
// tags:
//   - token
//
// responses:
//
//	'200':
//	  description: The created token
//	  content:
//	    application/json:
//	      schema:
//	        $ref: '#/components/schemas/TokenSchema'
func (r TokenResource) Post() {}

type TokenItemResource struct{}

// Get returns a token.
//
// ---
// summary: Retrieve a token
// tags:
//   - token
//
// responses:
//
//	'200':
//	  description: The token
//	'404':
//	  $ref: '#/components/responses/NotFoundError'
func (r *TokenItemResource) Get() {}

// Delete revokes a token.
func (r *TokenItemResource) Delete() {}

var Resources = map[any][]string{
	TokenResource{}:      {"/tokens"},
	&TokenItemResource{}: {"/tokens/<uuid:token_uuid>"},
}
