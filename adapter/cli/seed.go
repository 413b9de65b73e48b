package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/studyflowhq/studyflow/internal/app"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo week of tasks, habits and slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		if err := seedDemoData(cmd.Context(), container.StudyRepo, container.Owner); err != nil {
			return err
		}
		fmt.Println("demo data loaded; run `studyflow plan rebuild` next")
		return nil
	},
}

func seedDemoData(ctx context.Context, store app.StudyStore, owner uuid.UUID) error {
	now := time.Now().UTC()

	tasks := []domain.Task{
		{
			ID:               uuid.New(),
			OwnerID:          owner,
			Subject:          "Math",
			Title:            "Integration exercises",
			Deadline:         now.AddDate(0, 0, 5),
			Difficulty:       4,
			Importance:       3,
			EstimatedMinutes: 180,
			ContentFocus:     "u-substitution\nintegration by parts",
		},
		{
			ID:               uuid.New(),
			OwnerID:          owner,
			Subject:          "English",
			Title:            "Essay draft",
			Deadline:         now.AddDate(0, 0, 7),
			Difficulty:       2,
			Importance:       2,
			EstimatedMinutes: 120,
			Milestones: []domain.Milestone{
				{Title: "Outline", MinutesEstimate: 30},
				{Title: "First draft", MinutesEstimate: 90},
			},
		},
	}
	for _, t := range tasks {
		if err := store.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}

	if err := store.CreateHabit(ctx, domain.Habit{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "Vocabulary review",
		Cadence: domain.CadenceDaily,
		Minutes: 15,
	}); err != nil {
		return fmt.Errorf("seed habit: %w", err)
	}

	// Weekday evenings plus a longer Saturday morning block.
	slots := []domain.FreeSlot{}
	for weekday := 1; weekday <= 5; weekday++ {
		slots = append(slots, domain.FreeSlot{
			ID:        uuid.New(),
			OwnerID:   owner,
			Weekday:   weekday,
			StartTime: "19:00",
			EndTime:   "21:00",
			Source:    "manual",
		})
	}
	slots = append(slots, domain.FreeSlot{
		ID:        uuid.New(),
		OwnerID:   owner,
		Weekday:   6,
		StartTime: "08:00",
		EndTime:   "11:00",
		Source:    "manual",
	})
	for _, s := range slots {
		if err := store.CreateSlot(ctx, s); err != nil {
			return fmt.Errorf("seed slot: %w", err)
		}
	}

	return store.PutSettings(ctx, domain.DefaultSettings(owner))
}
