package assets

import _ "embed"

// ModelsData holds the catalog of LLM providers and models drafts can be generated with.
//
//go:embed models.json
var ModelsData []byte
