package model

import "github.com/m-mizutani/goerr/v2"

// Error tags used across packages to classify failures
var (
	ErrTagInvalidArgument = goerr.NewTag("invalid_argument")
	ErrTagHTTPStatus      = goerr.NewTag("http_status")
	ErrTagNotDirectory    = goerr.NewTag("not_directory")
	ErrTagCollision       = goerr.NewTag("collision")
	ErrTagUnsafePath      = goerr.NewTag("unsafe_path")
	ErrTagSegmentLimit    = goerr.NewTag("segment_limit")
)
