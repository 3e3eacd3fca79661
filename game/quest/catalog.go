package quest

import (
	"context"

	"github.com/kasuganosora/questservice/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetQuestCategories lists the live categories ordered by id.
func (s *Service) GetQuestCategories(ctx context.Context) ([]CategoryView, error) {
	rows, err := s.categories.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryView, 0, len(rows))
	for _, c := range rows {
		out = append(out, newCategoryView(c))
	}
	return out, nil
}

// PutQuestCategories replaces the category set with in: listed ids are
// created or updated, every other category is deleted.
func (s *Service) PutQuestCategories(ctx context.Context, in []CategoryInput) (err error) {
	if err := validateCategories(in); err != nil {
		return err
	}
	ctx, span := s.startSpan(ctx, "PutQuestCategories", attribute.Int("catalog.size", len(in)))
	defer func() { endSpan(span, err) }()

	now := s.now()
	desired := make([]*model.QuestCategory, 0, len(in))
	for _, c := range in {
		desired = append(desired, &model.QuestCategory{
			ID:                  c.ID,
			GenerationHourOfDay: c.GenerationHourOfDay,
			GenerationDayOfWeek: c.GenerationDayOfWeek,
			CreatedAt:           now,
		})
	}

	var saved, deleted int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		toSave, toDelete := Reconcile(desired, current,
			func(c *model.QuestCategory) string { return c.ID },
			func(dst, src *model.QuestCategory) {
				dst.GenerationHourOfDay = src.GenerationHourOfDay
				dst.GenerationDayOfWeek = src.GenerationDayOfWeek
			})
		if err := s.categories.SaveAll(ctx, tx, toSave); err != nil {
			return err
		}
		saved, deleted = len(toSave), len(toDelete)
		return s.categories.DeleteAll(ctx, tx, categoryIDs(toDelete))
	})
	if err != nil {
		return err
	}
	s.log(ctx).Info("quest categories replaced", zap.Int("saved", saved), zap.Int("deleted", deleted))
	return nil
}

// GetQuestDefinitions lists the live definitions ordered by id.
func (s *Service) GetQuestDefinitions(ctx context.Context) ([]DefinitionView, error) {
	rows, err := s.definitions.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]DefinitionView, 0, len(rows))
	for _, d := range rows {
		out = append(out, newDefinitionView(d))
	}
	return out, nil
}

// PutQuestDefinitions replaces the definition set with in. A definition
// naming an unknown category rejects the whole request.
func (s *Service) PutQuestDefinitions(ctx context.Context, in []DefinitionInput) (err error) {
	if err := validateDefinitions(in); err != nil {
		return err
	}
	ctx, span := s.startSpan(ctx, "PutQuestDefinitions", attribute.Int("catalog.size", len(in)))
	defer func() { endSpan(span, err) }()

	now := s.now()
	desired := make([]*model.QuestDefinition, 0, len(in))
	for _, d := range in {
		desired = append(desired, &model.QuestDefinition{
			ID:                     d.ID,
			CategoryID:             d.Category,
			RequiredProgress:       d.RequiredProgress,
			RewardItemDefinitionID: d.RewardItemDefinitionID,
			RewardItemCount:        d.RewardItemCount,
			CreatedAt:              now,
		})
	}

	var saved, deleted int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats, err := s.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(cats))
		for _, c := range cats {
			known[c.ID] = struct{}{}
		}
		for _, d := range desired {
			if _, ok := known[d.CategoryID]; !ok {
				return newError(ErrUnknownQuestCategory, "unknown quest category: %s", d.CategoryID)
			}
		}

		current, err := s.definitions.List(ctx, tx)
		if err != nil {
			return err
		}
		toSave, toDelete := Reconcile(desired, current,
			func(d *model.QuestDefinition) string { return d.ID },
			func(dst, src *model.QuestDefinition) {
				dst.CategoryID = src.CategoryID
				dst.RequiredProgress = src.RequiredProgress
				dst.RewardItemDefinitionID = src.RewardItemDefinitionID
				dst.RewardItemCount = src.RewardItemCount
			})
		if err := s.definitions.SaveAll(ctx, tx, toSave); err != nil {
			return err
		}
		ids := make([]string, 0, len(toDelete))
		for _, d := range toDelete {
			ids = append(ids, d.ID)
		}
		saved, deleted = len(toSave), len(toDelete)
		return s.definitions.DeleteAll(ctx, tx, ids)
	})
	if err != nil {
		return err
	}
	s.log(ctx).Info("quest definitions replaced", zap.Int("saved", saved), zap.Int("deleted", deleted))
	return nil
}

func categoryIDs(rows []*model.QuestCategory) []string {
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	return ids
}

func validateCategories(in []CategoryInput) error {
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		if c.ID == "" {
			return newError(ErrInvalidRequest, "category id is empty")
		}
		if _, dup := seen[c.ID]; dup {
			return newError(ErrInvalidRequest, "duplicate category id: %s", c.ID)
		}
		seen[c.ID] = struct{}{}
		if h := c.GenerationHourOfDay; h != nil && (*h < 0 || *h > 23) {
			return newError(ErrInvalidRequest, "category %s: generationHourOfDay %d out of range", c.ID, *h)
		}
		if d := c.GenerationDayOfWeek; d != nil && (*d < 1 || *d > 7) {
			return newError(ErrInvalidRequest, "category %s: generationDayOfWeek %d out of range", c.ID, *d)
		}
	}
	return nil
}

func validateDefinitions(in []DefinitionInput) error {
	seen := make(map[string]struct{}, len(in))
	for _, d := range in {
		if d.ID == "" {
			return newError(ErrInvalidRequest, "definition id is empty")
		}
		if _, dup := seen[d.ID]; dup {
			return newError(ErrInvalidRequest, "duplicate definition id: %s", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.RequiredProgress < 0 {
			return newError(ErrInvalidRequest, "definition %s: requiredProgress is negative", d.ID)
		}
		if d.RewardItemCount < 0 {
			return newError(ErrInvalidRequest, "definition %s: rewardItemCount is negative", d.ID)
		}
	}
	return nil
}
