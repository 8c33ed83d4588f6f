package main

import (
	"context"
	"fmt"
)

// syncProgress rebuilds the cached progress of the student's goals from their tasks.
func (cli *commandLine) syncProgress(email string) error {
	ctx := context.Background()
	st, err := cli.students.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	records, err := cli.progress.RecomputeStudent(ctx, st.ID)
	if err != nil {
		return err
	}
	for _, p := range records {
		fmt.Printf("goal %s: %d%% (%d/%d)\n", p.GoalID, p.Percentage, p.Completed, p.Total)
	}
	return nil
}
