package app

import (
	"fmt"
	"strings"

	"rhodes-todo/model"
)

// UnassignedCategory keys the group of tasks without a category.
const UnassignedCategory = "unassigned"

func (s *Service) Categories() []model.Category {
	return copySlice(s.state.Categories)
}

// CategoryName returns the name of a category, or "" when id is unknown.
func (s *Service) CategoryName(id string) string {
	for _, c := range s.state.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Service) AddCategory(name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrInvalidName
	}
	c := model.Category{ID: "cat_" + newID(), Name: name}
	s.state.Categories = append(s.state.Categories, c)
	return c, nil
}

func (s *Service) RenameCategory(id, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrInvalidName
	}
	for i := range s.state.Categories {
		if s.state.Categories[i].ID == id {
			s.state.Categories[i].Name = name
			return s.state.Categories[i], nil
		}
	}
	return model.Category{}, ErrCategoryNotFound
}

// DeleteCategory removes a category and clears it from every task and
// template that referenced it.
func (s *Service) DeleteCategory(id string) error {
	idx := -1
	for i := range s.state.Categories {
		if s.state.Categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrCategoryNotFound
	}
	s.state.Categories = append(s.state.Categories[:idx], s.state.Categories[idx+1:]...)

	for i := range s.state.Tasks {
		if s.state.Tasks[i].CategoryID == id {
			s.state.Tasks[i].CategoryID = ""
		}
	}
	for i := range s.state.Templates {
		if s.state.Templates[i].CategoryID == id {
			s.state.Templates[i].CategoryID = ""
		}
	}
	return nil
}

// ResolveCategoryID maps an id, id prefix or exact name to a category id.
func (s *Service) ResolveCategoryID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	ids := make([]string, len(s.state.Categories))
	for i, c := range s.state.Categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
		ids[i] = c.ID
	}
	return resolvePrefix(ids, ref, ErrCategoryNotFound)
}

func resolvePrefix(ids []string, ref string, notFound error) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", notFound
	}
	match := ""
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: prefix %q is ambiguous", notFound, ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", notFound
	}
	return match, nil
}
