package cmd

import "errors"

var errMissingArgument = errors.New("missing argument")
