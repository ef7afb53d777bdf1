package common

// TokenExpiredCode is the machine-readable error code the server attaches to
// 401 responses caused by an expired access token, so clients can distinguish
// "refresh and retry" from "sign in again".
const TokenExpiredCode = "token_expired"
