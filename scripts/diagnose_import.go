// Command diagnose_import runs one or more URLs through the same pipeline the
// import endpoint uses (URL validation, DNS resolution and address
// classification, the guarded fetch, and recipe extraction) and prints the
// verdict of each stage. Useful for answering "why did this URL get rejected"
// without digging through server logs.
//
// Usage:
//
//	go run scripts/diagnose_import.go https://example.com/recipe [more-urls...]
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"recipebox/internal/domain/entity"
	"recipebox/internal/infra/extract"
	"recipebox/internal/infra/fetcher"
	"recipebox/internal/usecase/importer"
	"recipebox/pkg/security/addrguard"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <url> [url...]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("fetcher config: %v", err)
	}

	guard := addrguard.NewGuard(nil)
	safeFetcher := fetcher.New(guard, cfg)
	extractor := extract.NewExtractor()

	failures := 0
	for _, rawURL := range os.Args[1:] {
		fmt.Printf("=== %s\n", rawURL)
		if !diagnose(rawURL, guard, safeFetcher, extractor, cfg) {
			failures++
		}
		fmt.Println()
	}

	if failures > 0 {
		os.Exit(1)
	}
}

// diagnose walks one URL through each stage and reports per-stage verdicts.
// It keeps going only while stages pass; the first failure ends the walk.
func diagnose(rawURL string, guard *addrguard.Guard, safeFetcher *fetcher.SafeFetcher, extractor *extract.Extractor, cfg fetcher.Config) bool {
	// Stage 1: URL validation (same rules as the import endpoint)
	if err := entity.ValidateURL(rawURL); err != nil {
		fmt.Printf("  [url]      REJECTED: %v\n", err)
		return false
	}
	fmt.Printf("  [url]      ok\n")

	parsed, err := url.Parse(rawURL)
	if err != nil {
		fmt.Printf("  [url]      REJECTED: %v\n", err)
		return false
	}

	// Stage 2: DNS resolution + address classification
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	addrs, err := guard.ResolveAndCheck(ctx, parsed.Hostname())
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, addrguard.ErrAddrBlocked):
			fmt.Printf("  [resolve]  BLOCKED: %v\n", err)
		case errors.Is(err, addrguard.ErrHostUnresolvable):
			fmt.Printf("  [resolve]  UNRESOLVABLE: %v\n", err)
		default:
			fmt.Printf("  [resolve]  FAILED: %v\n", err)
		}
		return false
	}
	fmt.Printf("  [resolve]  ok: %v\n", addrs)

	// Stage 3: guarded fetch (redirects re-validated per hop)
	ctx, cancel = context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	page, err := safeFetcher.Fetch(ctx, rawURL)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrBlockedTarget):
			fmt.Printf("  [fetch]    BLOCKED: %v\n", err)
		case errors.Is(err, importer.ErrTooManyRedirects):
			fmt.Printf("  [fetch]    TOO MANY REDIRECTS: %v\n", err)
		case errors.Is(err, importer.ErrTimeout):
			fmt.Printf("  [fetch]    TIMEOUT: %v\n", err)
		default:
			fmt.Printf("  [fetch]    FAILED: %v\n", err)
		}
		return false
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("close page: %v", err)
		}
	}()

	fmt.Printf("  [fetch]    ok: status=%d content-type=%q final-url=%s\n",
		page.StatusCode(), page.ContentType(), page.FinalURL())

	if page.StatusCode() != 200 {
		fmt.Printf("  [fetch]    non-200 status, extraction skipped\n")
		return false
	}

	body, err := page.ReadBody(cfg.MaxBodySize)
	if err != nil {
		if errors.Is(err, importer.ErrBodyTooLarge) {
			fmt.Printf("  [body]     TOO LARGE: %v\n", err)
		} else {
			fmt.Printf("  [body]     FAILED: %v\n", err)
		}
		return false
	}
	fmt.Printf("  [body]     ok: %d bytes\n", len(body))

	// Stage 4: extraction
	recipe, err := extractor.Extract(body, page.FinalURL())
	if err != nil {
		fmt.Printf("  [extract]  FAILED: %v\n", err)
		return false
	}
	if recipe == nil {
		fmt.Printf("  [extract]  NO RECIPE: no recognizable recipe markup on the page\n")
		return false
	}

	fmt.Printf("  [extract]  ok: title=%q ingredients=%d instructions=%d\n",
		recipe.Title, len(recipe.Ingredients), len(recipe.Instructions))
	return true
}
