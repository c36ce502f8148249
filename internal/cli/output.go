package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen11/maingo/internal/platform/logging"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// writeResponse prints a status line to errOut and the body, filtered when f
// is non-nil, to out. A non-2xx status is returned as an error after the
// body is written.
func writeResponse(ctx context.Context, out, errOut io.Writer, resp *request.Response, f *Filter) error {
	target := ""
	if resp.URL != nil {
		target = " " + logging.SanitizeURL(resp.URL)
	}
	fmt.Fprintf(errOut, "%s%s -> %d %s\n", resp.Method, target, resp.StatusCode, http.StatusText(resp.StatusCode))

	if f == nil {
		if len(resp.Body) > 0 {
			_, _ = out.Write(resp.Body)
			if !bytes.HasSuffix(resp.Body, []byte("\n")) {
				_, _ = io.WriteString(out, "\n")
			}
		}
	} else {
		results, err := f.Apply(ctx, resp.Body)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		for _, v := range results {
			if err := enc.Encode(v); err != nil {
				return fmt.Errorf("writing jq output: %w", err)
			}
		}
	}

	if !resp.OK() {
		return fmt.Errorf("%w: %d", errUpstream, resp.StatusCode)
	}
	return nil
}
