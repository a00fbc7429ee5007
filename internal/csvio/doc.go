// Package csvio reads and writes the semicolon-delimited CSV files exchanged
// with translators: the text export, the translation import, the animated
// subtitle sheet and the LLM translator's working file.
package csvio
