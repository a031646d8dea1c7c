// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// extractDOCX reads word/document.xml from the archive. Every paragraph (or
// explicit line break) becomes a line; run sizes are given in half-points.
func extractDOCX(ctx context.Context, path string) ([]Line, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, errors.New("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseDocumentXML(ctx, rc)
}

func parseDocumentXML(ctx context.Context, rd io.Reader) ([]Line, error) {
	decoder := xml.NewDecoder(rd)

	var (
		lines       []Line
		current     strings.Builder
		size        float64
		inParagraph bool
		inText      bool
	)
	flush := func() {
		lines = append(lines, Line{Text: current.String(), FontSize: size})
		current.Reset()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
				size = 0
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte(' ')
				}
			case "br", "cr":
				if inParagraph {
					flush()
				}
			case "sz":
				if !inParagraph {
					continue
				}
				for _, attr := range t.Attr {
					if attr.Name.Local != "val" {
						continue
					}
					if half, err := strconv.ParseFloat(attr.Value, 64); err == nil && half/2 > size {
						size = half / 2
					}
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					flush()
					inParagraph = false
				}
			}
		}
	}
	return lines, nil
}
