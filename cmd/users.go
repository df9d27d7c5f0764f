package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// UsersList prints every active user.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List(ctx)
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID(), Username: u.Username(), CreatedAt: u.CreatedAt()})
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, true)
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.ID, v.Username, v.CreatedAt.Format(time.RFC3339)})
	}
	return r.writePlainln("%s", ui.Table([]string{"ID", "Username", "Created"}, rows))
}

// UsersDelete soft-deletes a user by username.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := users.Delete(ctx, user.ID()); err != nil {
		return err
	}

	r.logger.Info("user deleted", "user_id", user.ID(), "username", username)
	return r.writePlainln("%s", ui.Styles.OK(fmt.Sprintf("Deleted %s", username)))
}
