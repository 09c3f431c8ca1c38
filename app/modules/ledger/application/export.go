package ledgerservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/xuri/excelize/v2"
)

const exportTimeFormat = time.RFC3339

// ExportWorkbook dumps submissions, completions, audit entries and the
// current standings into one xlsx workbook, one sheet each.
func (s *LedgerService) ExportWorkbook(ctx context.Context) ([]byte, error) {
	submissions, err := s.repo.ListSubmissions(ctx, nil)
	if err != nil {
		return nil, err
	}
	completions, err := s.repo.ListCompletions(ctx, nil)
	if err != nil {
		return nil, err
	}
	audit, err := s.repo.ListAuditEntries(ctx, nil)
	if err != nil {
		return nil, err
	}
	standings, err := s.CohortStandings(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WarnContext(ctx, "Failed to close export workbook", attr.Error(err))
		}
	}()

	subRows := make([][]any, 0, len(submissions))
	for _, sub := range submissions {
		invalidatedAt := ""
		if !sub.InvalidatedAt.IsZero() {
			invalidatedAt = sub.InvalidatedAt.UTC().Format(exportTimeFormat)
		}
		subRows = append(subRows, []any{
			sub.ID.String(), sub.CreatedAt.UTC().Format(exportTimeFormat),
			sub.ParticipantID.String(), sub.CohortID.String(), sub.ChallengeID.String(),
			sub.SubmittedFlag, sub.Correct, sub.PointsAwarded, sub.Invalidated, invalidatedAt,
		})
	}

	compRows := make([][]any, 0, len(completions))
	for _, c := range completions {
		compRows = append(compRows, []any{
			c.ID.String(), c.CreatedAt.UTC().Format(exportTimeFormat),
			c.ParticipantID.String(), c.CohortID.String(), c.ChallengeID.String(),
			c.SubmissionID.String(), c.PointsEarned, c.FirstForCohort,
		})
	}

	auditRows := make([][]any, 0, len(audit))
	for _, e := range audit {
		snapshot, err := json.Marshal(e.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit snapshot %s: %w", e.ID, err)
		}
		auditRows = append(auditRows, []any{
			e.ID.String(), e.CreatedAt.UTC().Format(exportTimeFormat),
			e.Action, e.ActorID.String(), e.TargetType, e.TargetID.String(), string(snapshot),
		})
	}

	standingRows := make([][]any, 0, len(standings))
	for _, st := range standings {
		standingRows = append(standingRows, []any{
			st.Rank, st.CohortName, st.Points, st.Completions, st.FirstSolves,
		})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{"Submissions", []any{"ID", "Time", "Participant", "Cohort", "Challenge", "Flag", "Correct", "Points", "Invalidated", "Invalidated At"}, subRows},
		{"Completions", []any{"ID", "Time", "Participant", "Cohort", "Challenge", "Submission", "Points", "First For Cohort"}, compRows},
		{"Audit", []any{"ID", "Time", "Action", "Actor", "Target Type", "Target", "Snapshot"}, auditRows},
		{"Standings", []any{"Rank", "Cohort", "Points", "Completions", "First Solves"}, standingRows},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", sh.name, err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh.name, sh.header, sh.rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
