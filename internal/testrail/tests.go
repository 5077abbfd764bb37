package testrail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// defaultPageSize is the page size requested from get_tests.
const defaultPageSize = 250

// GetTests returns all tests for a run, transparently paginating.
//
// TestRail 6.7+ wraps the page in an envelope with a "_links.next" marker;
// the loop advances the offset until that marker is null. Older instances
// return a bare array, which is treated as the single final page — as is
// any response that no longer matches the envelope shape.
func (c *Client) GetTests(ctx context.Context, runID int) ([]Test, error) {
	var all []Test
	offset := 0

	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(defaultPageSize))
		params.Set("offset", strconv.Itoa(offset))

		var raw json.RawMessage
		if err := c.getJSON(ctx, fmt.Sprintf("get_tests/%d", runID), params, "get tests", &raw); err != nil {
			return nil, err
		}

		var page pagedTests
		if err := json.Unmarshal(raw, &page); err == nil && page.Tests != nil {
			all = append(all, page.Tests...)
			if page.Links == nil || page.Links.Next == nil {
				return all, nil
			}
			offset += defaultPageSize
			continue
		}

		var batch []Test
		if err := json.Unmarshal(raw, &batch); err == nil {
			all = append(all, batch...)
		}
		return all, nil
	}
}
