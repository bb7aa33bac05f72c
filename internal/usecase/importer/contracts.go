package importer

import (
	"context"

	"recipebox/internal/domain/entity"
	"recipebox/pkg/ratelimit"
)

// FetchedPage is a terminal fetch response whose body has not been consumed
// yet. Status and content type are inspectable before committing to the
// capped body read, so a JSON endpoint is rejected without reading past its
// headers. Close releases the connection and cancels the fetch deadline;
// callers must always call it.
type FetchedPage interface {
	// StatusCode returns the HTTP status of the terminal response.
	StatusCode() int

	// ContentType returns the Content-Type header value, which may be
	// empty.
	ContentType() string

	// FinalURL returns the URL of the terminal response after redirects.
	FinalURL() string

	// ReadBody streams the body up to maxBytes. It rejects immediately on
	// a declared Content-Length over the cap, and aborts the stream the
	// moment the running count exceeds the cap.
	//
	// Errors:
	//   - ErrBodyTooLarge: declared or streamed size over the cap
	//   - ErrTimeout: the fetch deadline expired during the read
	ReadBody(maxBytes int64) ([]byte, error)

	// Close releases the response and aborts any in-flight transfer.
	Close() error
}

// PageFetcher performs the guarded outbound retrieval.
//
// Implementations MUST resolve and classify every hostname before connecting
// to it, on the initial request and on every redirect hop, with the
// transport's automatic redirect following disabled. See the fetcher
// implementation for the address policy.
//
// Errors:
//   - ErrInvalidURL: scheme, host, or port failed validation
//   - ErrBlockedTarget: guard refused a hostname or redirect target
//   - ErrTooManyRedirects: hop budget exhausted
//   - ErrTimeout: overall deadline expired
//   - ErrUnreachable: network failure on an allowed host
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (FetchedPage, error)
}

// Extractor turns fetched HTML into a structured recipe.
//
// A nil recipe with a nil error means the page contains no recognizable
// recipe markup; that is an expected outcome, not a failure. Errors are
// reserved for malformed input that could not be examined at all.
type Extractor interface {
	Extract(html []byte, sourceURL string) (*entity.Recipe, error)
}

// Renderer is the headless-render collaborator used when static extraction
// comes up empty. It fetches the URL through a browser environment and
// returns the rendered HTML.
//
// Implementations enforce their own timeout and normalize their failures:
// an empty string with a nil error means rendering was unavailable or
// produced nothing. The import pipeline treats any Renderer error the same
// as an empty result and never propagates it.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// AIParser is the optional LLM fallback that attempts to read a recipe out
// of page text when markup-based extraction found none. Same nil-means-none
// contract as Extractor.
type AIParser interface {
	Parse(ctx context.Context, html string, sourceURL string) (*entity.Recipe, error)
}

// AdmissionLimiter grants or refuses one import per call.
// *ratelimit.Limiter satisfies it.
type AdmissionLimiter interface {
	Admit(callerID string) ratelimit.Decision
}

// EmbeddingHook receives successfully imported recipes for asynchronous
// post-processing. Implementations must return quickly and do their work on
// their own goroutine.
type EmbeddingHook interface {
	OnRecipeImported(ctx context.Context, recipe *entity.Recipe)
}
