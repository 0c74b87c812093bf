package parser

import (
	"context"
	"fmt"

	"github.com/ccollicutt/talklog/pkg/fn"
)

// DefaultWorkers bounds concurrent file parsing.
const DefaultWorkers = 4

// ParseFiles parses paths concurrently with at most workers files in flight.
// The results are in the same order as paths; a file that cannot be read is
// an error result and does not stop the others.
func (p *Parser) ParseFiles(ctx context.Context, paths []string, encoding string, workers int) []fn.Result[*FileResult] {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return fn.ParMapResult(paths, workers, func(path string) fn.Result[*FileResult] {
		if err := ctx.Err(); err != nil {
			return fn.Err[*FileResult](fmt.Errorf("%s: %w", path, err))
		}
		return fn.FromPair(p.ParseFile(path, encoding))
	})
}
