// Package prompts renders the generation prompts. Templates are YAML embedded in the binary and can
// be overridden with PROMPTS_YAML; a broken file falls back to the built-in copies.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

const promptsPathEnv = "PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type Name string

const (
	Topics Name = "topics"
	Course Name = "course"
)

var (
	DefaultCategories = []string{"Tech & Coding", "Business & Finance", "Health & Fitness", "Science & Engineering", "Arts & Creativity"}
	DefaultBanners    = []string{"/banner1.png", "/banner2.png", "/banner3.png", "/banner4.png", "/banner5.png", "/banner6.png"}
)

// Prompt is a rendered system/user pair ready for the model.
type Prompt struct {
	Name    Name
	Version int
	System  string
	User    string
}

// Input carries every field a template may reference. Missing fields render empty.
type Input struct {
	Prompt        string
	TopicsCSV     string
	MinTitles     int
	MaxTitles     int
	Chapters      int
	QuizItems     int
	CategoriesCSV string
	BannersCSV    string
}

type yamlFile struct {
	Version int                   `yaml:"version"`
	Prompts map[string]yamlPrompt `yaml:"prompts"`
}

type yamlPrompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

// Set is a loaded, compiled prompt collection.
type Set struct {
	version int
	byName  map[Name]compiled
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default loads the configured prompts once. Load failures are logged and the fallback is used.
func Default(log *logger.Logger) *Set {
	defaultOnce.Do(func() {
		s, err := Load()
		if err != nil {
			if log != nil {
				log.Warn("prompts: load failed; using fallback", "error", err)
			}
			s = mustFallback()
		}
		defaultSet = s
	})
	return defaultSet
}

// Load reads PROMPTS_YAML when set, otherwise the embedded prompts.yaml.
func Load() (*Set, error) {
	var (
		data []byte
		err  error
	)
	if path := strings.TrimSpace(os.Getenv(promptsPathEnv)); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = promptsFS.ReadFile("prompts.yaml")
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Set, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Version <= 0 {
		return nil, errors.New("prompts: version must be positive")
	}
	s := &Set{version: f.Version, byName: map[Name]compiled{}}
	for _, name := range []Name{Topics, Course} {
		p, ok := f.Prompts[string(name)]
		if !ok {
			return nil, fmt.Errorf("prompts: missing %q", name)
		}
		if strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("prompts: %q has no user template", name)
		}
		c, err := compile(name, p)
		if err != nil {
			return nil, err
		}
		s.byName[name] = c
	}
	return s, nil
}

func compile(name Name, p yamlPrompt) (compiled, error) {
	sysT, err := template.New(string(name) + ".system").Option("missingkey=zero").Parse(p.System)
	if err != nil {
		return compiled{}, fmt.Errorf("%s system template parse: %w", name, err)
	}
	userT, err := template.New(string(name) + ".user").Option("missingkey=zero").Parse(p.User)
	if err != nil {
		return compiled{}, fmt.Errorf("%s user template parse: %w", name, err)
	}
	return compiled{system: sysT, user: userT}, nil
}

func (s *Set) Build(name Name, in Input) (Prompt, error) {
	c, ok := s.byName[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}
	system, err := render(c.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	user, err := render(c.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	return Prompt{Name: name, Version: s.version, System: system, User: user}, nil
}

// TopicsPrompt asks for a {"Course_titles": [...]} object.
func (s *Set) TopicsPrompt(userPrompt string) (Prompt, error) {
	return s.Build(Topics, Input{
		Prompt:    strings.TrimSpace(userPrompt),
		MinTitles: 5,
		MaxTitles: 7,
	})
}

// CoursePrompt asks for a {"courses": [...]} object with one course per topic.
func (s *Set) CoursePrompt(topics []string) (Prompt, error) {
	return s.Build(Course, Input{
		TopicsCSV:     strings.Join(topics, ", "),
		Chapters:      5,
		QuizItems:     10,
		CategoriesCSV: strings.Join(DefaultCategories, ", "),
		BannersCSV:    strings.Join(DefaultBanners, ", "),
	})
}

func render(t *template.Template, in Input) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
