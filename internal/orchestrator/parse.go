package orchestrator

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// parseToText converts a source's raw bytes to plain text according to its
// content type: HTML tags are stripped, PDF text is extracted page by page,
// everything else (Text/Markdown/Code/Json/Yaml) passes through as-is since
// those are already human/LLM-readable.
func parseToText(ct knowledge.ContentType, raw []byte, path string) (string, error) {
	switch ct.Kind {
	case knowledge.KindHtml:
		return extractHTMLText(raw)
	case knowledge.KindPdf:
		return extractPDFText(raw, path)
	default:
		return string(raw), nil
	}
}

func extractHTMLText(raw []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return "", knowledge.NewError(knowledge.KindErrParse, "parsing HTML", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String()), nil
}

// extractPDFText reads a PDF via ledongthuc/pdf, which wants an io.ReaderAt
// plus a size rather than a byte slice. When path is available (a real
// on-disk source) pdf.Open is used directly; zip-virtualized and
// fetched-by-URL PDFs instead go through pdf.NewReader over the in-memory
// bytes, since there is no file to open.
func extractPDFText(raw []byte, path string) (string, error) {
	var r *pdf.Reader
	if path != "" {
		f, reader, err := pdf.Open(path)
		if err != nil {
			return "", knowledge.NewError(knowledge.KindErrParse, fmt.Sprintf("opening PDF %s", path), err)
		}
		defer f.Close()
		r = reader
	} else {
		reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			return "", knowledge.NewError(knowledge.KindErrParse, "opening in-memory PDF", err)
		}
		r = reader
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// fetchURL retrieves a URL source with the same per-call timeout as the
// HTTP embedding providers.
func fetchURL(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("fetching %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("fetching %s returned status %d", url, resp.StatusCode), nil)
	}
	return io.ReadAll(resp.Body)
}

// zipEntry is one virtually-extracted file from a zip source.
type zipEntry struct {
	Name string
	Data []byte
}

// extractZipEntries virtually extracts every regular file in a zip archive
// (no temp directory written to disk), in deterministic name order.
func extractZipEntries(path string) ([]zipEntry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("opening zip %s", path), err)
	}
	defer r.Close()

	var entries []zipEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		entries = append(entries, zipEntry{Name: f.Name, Data: data})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
