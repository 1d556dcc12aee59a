package prompts

var fallbackYAML = []byte(`version: 1
prompts:
  topics:
    system: "Reply with JSON only."
    user: |
      Return ONLY a valid JSON object of the form {"Course_titles": ["Title 1", "Title 2"]}.
      Generate {{.MinTitles}}-{{.MaxTitles}} short course titles for: {{.Prompt}}
  course:
    system: "Reply with JSON only."
    user: |
      Return ONLY a valid JSON object of the form {"courses": [{"courseTitle": "", "description": "",
      "banner_image": "", "category": "", "chapters": [{"chapterName": "", "content": [{"topic": "",
      "explain": "", "code": null, "example": null}]}], "quiz": [], "flashcards": [], "qa": []}]}.
      Write one course per topic, in order, with {{.Chapters}} chapters each.
      Selected topics: {{.TopicsCSV}}
`)

func mustFallback() *Set {
	s, err := Parse(fallbackYAML)
	if err != nil {
		panic(err)
	}
	return s
}
