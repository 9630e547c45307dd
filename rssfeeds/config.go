package rssfeeds

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"hearingwatch/config"
	"hearingwatch/types"
)

// ErrSubcommitteeUnsupported is returned for committees whose thomas_id
// identifies a subcommittee. Their feeds are not resolved.
var ErrSubcommitteeUnsupported = errors.New("subcommittees not yet supported")

var fullCommitteeRe = regexp.MustCompile(`^\D+$`)

// FeedCode returns the docs.house.gov committee code for a full committee.
func FeedCode(c types.Committee) (string, error) {
	if !fullCommitteeRe.MatchString(c.ThomasID) {
		return "", fmt.Errorf("committee %q: %w", c.ThomasID, ErrSubcommitteeUnsupported)
	}
	id := strings.TrimSpace(c.HouseCommitteeID)
	if id == "" {
		return "", fmt.Errorf("committee %q has no house_committee_id", c.ThomasID)
	}
	return id + config.FullCommitteeCodeSuffix, nil
}

// ResolveFeedURL resolves a committee to its RSS feed URL
func ResolveFeedURL(c types.Committee) (string, error) {
	code, err := FeedCode(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(config.HouseFeedURLFormat, code), nil
}
