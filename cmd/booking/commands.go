package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/services"
	"github.com/cargoreligion/booking-client/pkg/booking"
	"github.com/cargoreligion/booking-client/pkg/errors"
)

// app holds what the command handlers need
type app struct {
	ctx     context.Context
	session services.SessionServiceInterface
	api     *booking.Client
	out     io.Writer
	errOut  io.Writer
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// subcommand dispatches args[0] to one of handlers
func subcommand(name string, args []string, handlers map[string]func([]string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("%s: missing subcommand", name)
	}
	run, ok := handlers[args[0]]
	if !ok {
		return fmt.Errorf("%s: unknown subcommand %q", name, args[0])
	}
	return run(args[1:])
}

// requireCoach returns the acting user if they are a coach
func (a *app) requireCoach() (models.User, error) {
	user, err := a.session.RequireUser()
	if err != nil {
		return models.User{}, err
	}
	if !user.IsCoach() {
		return models.User{}, errors.ForbiddenError(user.ID, string(models.RoleCoach))
	}
	return user, nil
}

// requireStudent returns the acting user if they are a student
func (a *app) requireStudent() (models.User, error) {
	user, err := a.session.RequireUser()
	if err != nil {
		return models.User{}, err
	}
	if !user.IsStudent() {
		return models.User{}, errors.ForbiddenError(user.ID, string(models.RoleStudent))
	}
	return user, nil
}

func pageFlags(cmd *Command, w io.Writer) (*flag.FlagSet, *models.PageRequest) {
	fs := cmd.NewFlagSet(w)
	page := &models.PageRequest{}
	fs.IntVar(&page.Page, "page", models.DefaultPage, "page number, starting at 1")
	fs.IntVar(&page.PageSize, "page-size", models.DefaultPageSize, "items per page")
	return fs, page
}

func registerCommands(r *CommandRegistry, a *app) {
	r.Register(&Command{
		Name:        "users",
		Description: "Refresh and list every known user",
		Usage:       "booking users [--cached]",
		Examples:    []string{"booking users", "booking users --cached"},
		Run:         a.usersCommand(r),
	})

	r.Register(&Command{
		Name:        "login",
		Description: "Act as the user with the given id",
		Usage:       "booking login <user-id>",
		Examples:    []string{"booking login 3f0c6c1e-2f0b-4f43-a1a5-2a6d0b1f6c11"},
		Run:         a.loginCommand,
	})

	r.Register(&Command{
		Name:        "whoami",
		Description: "Show the acting user",
		Usage:       "booking whoami",
		Run:         a.whoamiCommand,
	})

	r.Register(&Command{
		Name:        "logout",
		Description: "Forget the acting user",
		Usage:       "booking logout",
		Run:         a.logoutCommand,
	})

	slots := &Command{
		Name:        "slots",
		Description: "Work with coaching slots",
		Usage:       "booking slots <upcoming|available|book|details|create> [flags] [arguments]",
		Examples: []string{
			"booking slots upcoming --page 2 --page-size 5",
			"booking slots available <coach-id>",
			"booking slots book <slot-id>",
			"booking slots details <slot-id>",
			"booking slots create --start 2030-01-07T10:00:00Z",
		},
	}
	slots.Run = a.slotsCommand(slots)
	r.Register(slots)

	bookings := &Command{
		Name:        "bookings",
		Description: "List the acting student's upcoming bookings",
		Usage:       "booking bookings [--page N] [--page-size N]",
	}
	bookings.Run = a.bookingsCommand(bookings)
	r.Register(bookings)

	feedback := &Command{
		Name:        "feedback",
		Description: "Record and list session feedback",
		Usage:       "booking feedback <create|past|student> [flags] [arguments]",
		Examples: []string{
			"booking feedback create --slot <slot-id> --satisfaction 5 --notes \"great session\"",
			"booking feedback past",
			"booking feedback student <student-id>",
		},
	}
	feedback.Run = a.feedbackCommand(feedback)
	r.Register(feedback)

	r.Register(&Command{
		Name:        "students",
		Description: "List students who had sessions with the acting coach",
		Usage:       "booking students",
		Run:         a.studentsCommand,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "booking version",
		Run: func([]string) error {
			fmt.Fprintf(a.out, "booking %s (commit: %s, built: %s)\n", r.version.Version, r.version.Commit, r.version.Date)
			return nil
		},
	})
}

func (a *app) usersCommand(r *CommandRegistry) func([]string) error {
	return func(args []string) error {
		cmd, _ := r.Lookup("users")
		fs := cmd.NewFlagSet(a.errOut)
		cached := fs.Bool("cached", false, "list the stored directory without asking the backend")
		if err := fs.Parse(args); err != nil {
			return err
		}

		if *cached {
			return a.printJSON(a.session.Directory())
		}
		users, err := a.session.RefreshDirectory(a.ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return a.printJSON(users)
	}
}

func (a *app) loginCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("login: expected exactly one user id")
	}
	id := args[0]

	user, err := a.session.SwitchUser(a.ctx, id)
	if errors.Is(err, errors.ErrNotFound) {
		// The stored directory may be stale
		if _, refreshErr := a.session.RefreshDirectory(a.ctx); refreshErr != nil {
			return fmt.Errorf("failed to refresh users: %w", refreshErr)
		}
		user, err = a.session.SwitchUser(a.ctx, id)
	}
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return a.printJSON(user)
}

func (a *app) whoamiCommand([]string) error {
	user, err := a.session.RequireUser()
	if err != nil {
		return err
	}
	return a.printJSON(user)
}

func (a *app) logoutCommand([]string) error {
	return a.session.Logout(a.ctx)
}

func (a *app) slotsCommand(cmd *Command) func([]string) error {
	return func(args []string) error {
		return subcommand("slots", args, map[string]func([]string) error{
			"upcoming": func(args []string) error {
				fs, page := pageFlags(cmd, a.errOut)
				if err := fs.Parse(args); err != nil {
					return err
				}
				if _, err := a.requireCoach(); err != nil {
					return err
				}
				result, err := a.api.GetUpcomingSlots(a.ctx, *page)
				if err != nil {
					return err
				}
				return a.printJSON(result)
			},
			"available": func(args []string) error {
				fs, page := pageFlags(cmd, a.errOut)
				if err := fs.Parse(args); err != nil {
					return err
				}
				if len(fs.Args()) != 1 {
					return fmt.Errorf("slots available: expected exactly one coach id")
				}
				if _, err := a.session.RequireUser(); err != nil {
					return err
				}
				result, err := a.api.GetAvailableSlots(a.ctx, fs.Args()[0], *page)
				if err != nil {
					return err
				}
				return a.printJSON(result)
			},
			"book": func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("slots book: expected exactly one slot id")
				}
				if _, err := a.requireStudent(); err != nil {
					return err
				}
				slot, err := a.api.BookSlot(a.ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(slot)
			},
			"details": func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("slots details: expected exactly one slot id")
				}
				if _, err := a.session.RequireUser(); err != nil {
					return err
				}
				details, err := a.api.GetSlotDetails(a.ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(details)
			},
			"create": func(args []string) error {
				fs := cmd.NewFlagSet(a.errOut)
				start := fs.String("start", "", "slot start time, RFC 3339")
				if err := fs.Parse(args); err != nil {
					return err
				}
				data := models.CreateSlotData{}
				if *start != "" {
					t, err := time.Parse(time.RFC3339, *start)
					if err != nil {
						return errors.InvalidInputError("start", "must be an RFC 3339 timestamp")
					}
					data.StartTime = t
				}
				if err := models.Validate(data); err != nil {
					return err
				}
				if _, err := a.requireCoach(); err != nil {
					return err
				}
				resp, err := a.api.CreateSlot(a.ctx, data)
				if err != nil {
					return err
				}
				return a.printJSON(resp)
			},
		})
	}
}

func (a *app) bookingsCommand(cmd *Command) func([]string) error {
	return func(args []string) error {
		fs, page := pageFlags(cmd, a.errOut)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.requireStudent(); err != nil {
			return err
		}
		result, err := a.api.GetUpcomingBookingsForStudent(a.ctx, *page)
		if err != nil {
			return err
		}
		return a.printJSON(result)
	}
}

func (a *app) feedbackCommand(cmd *Command) func([]string) error {
	return func(args []string) error {
		return subcommand("feedback", args, map[string]func([]string) error{
			"create": func(args []string) error {
				fs := cmd.NewFlagSet(a.errOut)
				data := models.CreateSessionFeedback{}
				fs.StringVar(&data.SlotID, "slot", "", "slot id")
				fs.IntVar(&data.Satisfaction, "satisfaction", 0, "satisfaction from 1 to 5")
				fs.StringVar(&data.Notes, "notes", "", "free-form notes")
				if err := fs.Parse(args); err != nil {
					return err
				}
				if err := models.Validate(data); err != nil {
					return err
				}
				if _, err := a.requireCoach(); err != nil {
					return err
				}
				resp, err := a.api.CreateSessionFeedback(a.ctx, data)
				if err != nil {
					return err
				}
				return a.printJSON(resp)
			},
			"past": func([]string) error {
				if _, err := a.requireCoach(); err != nil {
					return err
				}
				list, err := a.api.GetPastSessionFeedbacks(a.ctx)
				if err != nil {
					return err
				}
				return a.printJSON(list)
			},
			"student": func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("feedback student: expected exactly one student id")
				}
				if _, err := a.requireCoach(); err != nil {
					return err
				}
				list, err := a.api.GetSessionFeedbackForStudent(a.ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(list)
			},
		})
	}
}

func (a *app) studentsCommand([]string) error {
	if _, err := a.requireCoach(); err != nil {
		return err
	}
	students, err := a.api.GetStudentsWithSessions(a.ctx)
	if err != nil {
		return err
	}
	return a.printJSON(students)
}
