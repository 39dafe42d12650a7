// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitemapper

import (
	"bytes"
	"io"
	"mime"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeText turns a text body into a string. Valid UTF-8 is used as is
// (minus a leading BOM). Otherwise, when detect is set, the charset comes
// from the Content-Type header or from chardet and the body is transcoded.
// Any failure falls back to the raw bytes.
func decodeText(body []byte, contentType string, detect bool) string {
	body = bytes.TrimPrefix(body, utf8BOM)
	if !detect || utf8.Valid(body) {
		return string(body)
	}

	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = params["charset"]
	}
	if label == "" {
		r, err := chardet.NewTextDetector().DetectBest(body)
		if err != nil {
			return string(body)
		}
		label = r.Charset
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
