// Copyright 2025 Poiesic Systems
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


package openai

// repairJSON fixes the malformation vision models produce most often:
// object keys missing their opening quote (`{ class": ...`). Anything it
// does not recognize passes through unchanged; the caller re-parses and
// decides whether the result is usable.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	i := 0
	for i < len(in) {
		ch := in[i]
		if ch != '{' && ch != ',' {
			out = append(out, ch)
			i++
			continue
		}

		// A key may follow; copy the delimiter and any whitespace first.
		out = append(out, ch)
		i++
		for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t') {
			out = append(out, in[i])
			i++
		}

		if i >= len(in) || in[i] == '"' || !isLetter(in[i]) {
			continue
		}

		// Bare word: scan to its end and look for the `":` that betrays a
		// dropped opening quote.
		keyStart := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_' || in[i] == ' ') {
			i++
		}
		keyEnd := i

		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
			for j := keyStart; j < keyEnd; j++ {
				// Trim stray spaces at the key's edges.
				if in[j] != ' ' || (j > keyStart && j < keyEnd-1) {
					out = append(out, in[j])
				}
			}
			// The closing quote is already present at in[i].
			continue
		}

		// Not a key after all; emit what was scanned untouched.
		out = append(out, in[keyStart:i]...)
	}

	return string(out)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
