package app

import (
	"strings"

	"rhodes-todo/model"
)

// DefaultTemplateText names a template saved without text.
const DefaultTemplateText = "Untitled template"

// TemplateInput carries the editable fields of a template.
type TemplateInput struct {
	Text            string
	Priority        model.Priority
	CategoryID      string
	Subtasks        []model.SubtaskBlueprint
	Points          int
	Frequency       int
	RecurrenceLimit int
}

func (in TemplateInput) build(id string) model.TaskTemplate {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		text = DefaultTemplateText
	}
	priority := in.Priority
	if !priority.IsValid() {
		priority = model.PriorityNormal
	}
	subs := make([]model.SubtaskBlueprint, 0, len(in.Subtasks))
	for _, b := range in.Subtasks {
		t := strings.TrimSpace(b.Text)
		if t == "" {
			continue
		}
		subs = append(subs, model.SubtaskBlueprint{Text: t, Points: nonNegative(b.Points)})
	}
	return model.TaskTemplate{
		ID:              id,
		Text:            text,
		Priority:        priority,
		CategoryID:      strings.TrimSpace(in.CategoryID),
		Subtasks:        subs,
		Points:          nonNegative(in.Points),
		Frequency:       nonNegative(in.Frequency),
		RecurrenceLimit: nonNegative(in.RecurrenceLimit),
	}
}

// Templates returns every template, newest first.
func (s *Service) Templates() []model.TaskTemplate {
	out := make([]model.TaskTemplate, len(s.state.Templates))
	for i := range s.state.Templates {
		out[i] = copyTemplate(s.state.Templates[i])
	}
	return out
}

// TemplatesInCategory returns the templates filed under categoryID.
// An empty categoryID returns every template.
func (s *Service) TemplatesInCategory(categoryID string) []model.TaskTemplate {
	if categoryID == "" {
		return s.Templates()
	}
	out := make([]model.TaskTemplate, 0)
	for _, t := range s.state.Templates {
		if t.CategoryID == categoryID {
			out = append(out, copyTemplate(t))
		}
	}
	return out
}

func (s *Service) GetTemplate(id string) (model.TaskTemplate, error) {
	idx := s.templateIndex(id)
	if idx == -1 {
		return model.TaskTemplate{}, ErrTemplateNotFound
	}
	return copyTemplate(s.state.Templates[idx]), nil
}

func (s *Service) CreateTemplate(in TemplateInput) model.TaskTemplate {
	tmp := in.build("tmp_" + newID())
	s.state.Templates = append([]model.TaskTemplate{tmp}, s.state.Templates...)
	return copyTemplate(tmp)
}

// UpdateTemplate replaces every field of a template except its id.
func (s *Service) UpdateTemplate(id string, in TemplateInput) (model.TaskTemplate, error) {
	idx := s.templateIndex(id)
	if idx == -1 {
		return model.TaskTemplate{}, ErrTemplateNotFound
	}
	s.state.Templates[idx] = in.build(id)
	return copyTemplate(s.state.Templates[idx]), nil
}

func (s *Service) DeleteTemplate(id string) error {
	idx := s.templateIndex(id)
	if idx == -1 {
		return ErrTemplateNotFound
	}
	s.state.Templates = append(s.state.Templates[:idx], s.state.Templates[idx+1:]...)
	return nil
}

// DeployTemplate creates a fresh task from a template, due today.
// Every deploy yields an independent task.
func (s *Service) DeployTemplate(id string, today model.Date) (model.Task, error) {
	idx := s.templateIndex(id)
	if idx == -1 {
		return model.Task{}, ErrTemplateNotFound
	}
	tmp := s.state.Templates[idx]
	return s.CreateTask(CreateTaskInput{
		Text:            tmp.Text,
		Priority:        tmp.Priority,
		CategoryID:      tmp.CategoryID,
		DueDate:         today,
		Subtasks:        tmp.Subtasks,
		Points:          tmp.Points,
		Frequency:       tmp.Frequency,
		RecurrenceLimit: tmp.RecurrenceLimit,
	})
}

// ResolveTemplateID maps an id or unique id prefix to a template id.
func (s *Service) ResolveTemplateID(ref string) (string, error) {
	ids := make([]string, len(s.state.Templates))
	for i, t := range s.state.Templates {
		ids[i] = t.ID
	}
	return resolvePrefix(ids, ref, ErrTemplateNotFound)
}

func (s *Service) templateIndex(id string) int {
	for i := range s.state.Templates {
		if s.state.Templates[i].ID == id {
			return i
		}
	}
	return -1
}
