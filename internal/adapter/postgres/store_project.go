package postgres

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/domain/project"
)

func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, manager_id, created_at, updated_at FROM projects WHERE id = $1`, id)

	var p project.Project
	if err := row.Scan(&p.ID, &p.Name, &p.ManagerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, notFoundWrap(err, "get project %s", id)
	}

	members, err := s.listProjectMembers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.MemberIDs = members
	return &p, nil
}

// ManagerAuthority answers both halves of the manager permission check in a
// single round trip: does the employee manage the project, and are they a
// member of it. An unknown project yields (false, false, nil).
func (s *Store) ManagerAuthority(ctx context.Context, managerID, projectID string) (bool, bool, error) {
	var manages, member bool
	err := s.pool.QueryRow(ctx,
		`SELECT p.manager_id = $1,
		        EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.employee_id = $1)
		 FROM projects p WHERE p.id = $2`, managerID, projectID,
	).Scan(&manages, &member)
	if err != nil {
		if isNoRows(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("manager authority %s/%s: %w", managerID, projectID, err)
	}
	return manages, member, nil
}

func (s *Store) listProjectMembers(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT employee_id FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
