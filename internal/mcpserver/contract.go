package mcpserver

// VaultFormatResourceURI identifies the vault format resource.
const VaultFormatResourceURI = "scaffold://vault-format"

// VaultFormatContract describes the on-disk vault document so LLM
// consumers know what the journal tools read and write.
const VaultFormatContract = `# Scaffold Vault Format

All journal state lives in one UTF-8 JSON document (default ` + "`vault.json`" + `),
written with two-space indentation and replaced atomically on every write.

## Structure

` + "```" + `json
{
  "affirmations":   ["I adapt and grow."],
  "events":         [{"timestamp": "2025-01-01", "description": "Launch", "outcome": "Success"}],
  "holograms":      [{"concept": "Resilience", "facet": "visual", "description": "oak tree"}],
  "reflections":    ["Feeling optimistic"],
  "reinforcements": [{"concept": "focus", "phase": "compress_3", "text": "a b c", "drill_id": "..."}]
}
` + "```" + `

## Rules

1. **Append only.** Entries are never edited, reordered, or removed by the tools.
2. **Order is meaning.** Each collection is ordered by insertion; later hologram layers
   for the same concept and facet replace earlier ones in a synthesis.
3. **Events** need all of ` + "`timestamp`" + `, ` + "`description`" + ` and ` + "`outcome`" + `. Empty strings are allowed.
4. **Holograms** need ` + "`concept`" + `, ` + "`facet`" + ` and ` + "`description`" + `.
5. **Reinforcements** need ` + "`concept`" + `, ` + "`phase`" + ` and ` + "`text`" + `. The phase is
   ` + "`decompress`" + ` for the full expansion or ` + "`compress_<n>`" + ` for the first n words of it.
   Records of one drill share a ` + "`drill_id`" + `.
6. **Extra keys** on records and unknown top-level keys are kept as they are.
7. A document that is not valid JSON, or whose records miss required keys, is reported
   as corrupt and never repaired automatically.

## Tools

- ` + "`add_event`" + ` / ` + "`render_timeline`" + `: one line per event, ` + "`timestamp: description -> outcome`" + `.
- ` + "`add_affirmation`" + ` / ` + "`next_affirmation`" + `: strict round-robin rotation.
- ` + "`reflect`" + ` / ` + "`reflection_history`" + `.
- ` + "`add_hologram_layer`" + ` / ` + "`synthesize_concept`" + `: ` + "`facet: description | facet: description`" + `.
- ` + "`run_drill`" + `: returns one summary per requested word count.
`
