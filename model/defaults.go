package model

// Built-in records used when a slot is missing or unreadable.

func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_1", Name: "Daily Drills"},
		{ID: "cat_2", Name: "Enemy Intel"},
		{ID: "cat_3", Name: "Supply Prep"},
	}
}

func DefaultTemplates() []TaskTemplate {
	return []TaskTemplate{
		{
			ID:         "tmp_1",
			Text:       "Weekly Annihilation",
			Priority:   PriorityUrgent,
			CategoryID: "cat_1",
			Subtasks: []SubtaskBlueprint{
				{Text: "Chernobog", Points: 20},
				{Text: "Lungmen Outskirts", Points: 20},
				{Text: "Lungmen Downtown", Points: 20},
			},
			Points:    100,
			Frequency: 7,
		},
	}
}

func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: "ach_1", Title: "Probationary Operator", Description: "Earn 100 merit points", TargetPoints: 100},
		{ID: "ach_2", Title: "Field Operator", Description: "Earn 500 merit points", TargetPoints: 500},
		{ID: "ach_3", Title: "Senior Operator", Description: "Earn 1000 merit points", TargetPoints: 1000},
		{ID: "ach_4", Title: "Elite Operator", Description: "Earn 5000 merit points", TargetPoints: 5000},
	}
}

func DefaultStoreItems() []StoreItem {
	return []StoreItem{
		{ID: "item_1", Name: "Sanity Potion", Cost: 100, Description: "A short break", Icon: "🧪"},
		{ID: "item_2", Name: "Originium Prime", Cost: 500, Description: "A snack of your choice", Icon: "💎"},
		{ID: "item_3", Name: "Headhunting Permit", Cost: 1000, Description: "An evening off", Icon: "🎫"},
		{ID: "item_4", Name: "Elite Promotion", Cost: 2000, Description: "Something you have been saving for", Icon: "🏅"},
	}
}

// NewState returns an initialized state with built-in defaults.
func NewState() AppState {
	return AppState{
		Tasks:                []Task{},
		Categories:           DefaultCategories(),
		Templates:            DefaultTemplates(),
		Achievements:         DefaultAchievements(),
		UserPoints:           0,
		StoreItems:           DefaultStoreItems(),
		PurchaseHistory:      []PurchaseRecord{},
		IsBgmEnabled:         false,
		NotifiedAchievements: []string{},
	}
}
