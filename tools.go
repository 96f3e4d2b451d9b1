//go:build tools

package hpcplot

import (
	_ "github.com/golang/mock/mockgen"
)
