package model

// KeySet holds the derived blocking/matching keys for one record.
// An empty string means the key is absent because its required inputs were
// missing. Absent keys never join: the engine skips them, so two records with
// no birth date do not "match" on an empty strong key.
type KeySet struct {
	Strong    string `json:"strong,omitempty"`    // normalized name + full birth date: "name|YYYY-MM-DD"
	Moderate  string `json:"moderate,omitempty"`  // normalized name + birth year: "name|YYYY"
	Weak      string `json:"weak,omitempty"`      // normalized name alone
	Phonetic  string `json:"phonetic,omitempty"`  // 6-char consonant-class encoding of the name
	Composite string `json:"composite,omitempty"` // content hash over the present identity fields
}
