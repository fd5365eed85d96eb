// Package common contains shared constants, sentinel errors and small helpers
// used across the procedure builder.
package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// PushTypeNewProcedure is the data-message type sent to devices on publish.
const PushTypeNewProcedure = "newProcedure"
