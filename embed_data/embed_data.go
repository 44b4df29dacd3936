package embed_data

import _ "embed"

//go:embed models/model_details.json
var ModelDetails []byte

//go:embed templates/tailwind.config.js.tmpl
var TailwindConfigTemplate []byte

//go:embed templates/page.tsx.tmpl
var PageTemplate []byte

//go:embed templates/component.tsx.tmpl
var ComponentTemplate []byte
