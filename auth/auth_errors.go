package auth

import "errors"

var (
	InvalidAccessTokenErr = errors.New("invalid access token")
	MissingAccessTokenErr = errors.New("response carried no access token")
	MissingUserIDErr      = errors.New("access token carries no user id")
	UserRoleUnknownErr    = errors.New("user has no recognised role")
)
