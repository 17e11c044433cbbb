package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ChunkSize is the payload size of a single streamed upload/download message.
const ChunkSize = 64 * 1024
