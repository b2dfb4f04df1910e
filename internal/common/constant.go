package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// RoleAdmin is the access-token role allowed to override restriction bundles.
const RoleAdmin = "admin"
