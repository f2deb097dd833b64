package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// CollisionPolicy decides what happens when a merged file already exists at
// its destination
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionSkip      CollisionPolicy = "skip"
	CollisionError     CollisionPolicy = "error"
)

// CollisionPolicies lists every accepted policy in display order
var CollisionPolicies = []CollisionPolicy{
	CollisionOverwrite,
	CollisionSkip,
	CollisionError,
}

// ParseCollisionPolicy converts a case-insensitive name into a policy
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CollisionPolicies {
		if p == known {
			return p, nil
		}
	}
	return "", goerr.New("unknown collision policy",
		goerr.T(ErrTagInvalidArgument),
		goerr.V("policy", s),
	)
}

func (p CollisionPolicy) String() string {
	return string(p)
}
