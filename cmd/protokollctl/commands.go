package main

import (
	"errors"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type Dependencies struct {
	Logger logging.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "protokollctl",
		Short:         "Administration tool for Fachschaft minutes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewTokenCmd(deps))
	rootCmd.AddCommand(NewHashPasswordCmd(deps))
	rootCmd.AddCommand(NewRenderCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

func NewTokenCmd(deps *Dependencies) *cobra.Command {
	var (
		userID   uint
		username string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT, e.g. for scripts calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("FS_JWT_SIGNING_KEY")
			if len(key) == 0 {
				deps.Logger.LogWarn(nil, "FS_JWT_SIGNING_KEY not set, using the built-in development key")
				key = middlewares.SigningKey
			}
			token, expires, err := middlewares.GenerateToken(cmd.Context(), []byte(key), userID, username, roles)
			if err != nil {
				return err
			}
			deps.Logger.LogInfof(nil, "token for %s valid until %s", username, expires.Format(time.RFC3339))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().UintVar(&userID, "id", 0, "user id")
	cmd.Flags().StringVar(&username, "user", "admin", "user name")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{"admin"}, "comma separated roles")
	return cmd
}

func NewHashPasswordCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password for the users table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := models.Hash(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
}

type renderOptions struct {
	gremium      string
	title        string
	date         string
	begin        string
	end          string
	chair        string
	minuteTakers []string
	approved     bool
	motions      bool
	templatesDir string
	out          string
}

// NewRenderCmd assembles a markup file offline. Without --out the script is
// printed, with --out the toolchain builds the artifacts next to that stem.
func NewRenderCmd(deps *Dependencies) *cobra.Command {
	var o renderOptions

	cmd := &cobra.Command{
		Use:   "render <file.t2t>",
		Short: "Render a minutes source without the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			source, err := protokoll.DecodeSource(raw)
			if err != nil {
				return err
			}

			date, err := time.Parse("2006-01-02", o.date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			meeting := models.Meeting{
				MeetingTypeID: o.gremium,
				MeetingType: models.MeetingType{
					ID:              o.gremium,
					Name:            o.gremium,
					MotionTag:       o.motions,
					PointOfOrderTag: o.motions,
				},
				Title:     o.title,
				Time:      date,
				ChairName: o.chair,
			}
			for _, name := range o.minuteTakers {
				meeting.MinuteTakers = append(meeting.MinuteTakers, models.MinuteTaker{Name: strings.TrimSpace(name)})
			}

			assembler := protokoll.NewAssembler(protokoll.NewTagRegistry(), &protokoll.DirTemplateLoader{Dir: o.templatesDir})
			script, err := assembler.Assemble(protokoll.ScriptInput{
				Meeting:  meeting,
				Begin:    o.begin,
				End:      o.end,
				Approved: o.approved,
				Source:   source,
			})
			var forbidden *protokoll.ForbiddenCommandError
			if errors.As(err, &forbidden) {
				return fmt.Errorf("line %d: forbidden command %q", forbidden.Line, forbidden.Text)
			}
			if err != nil {
				return err
			}

			if len(o.out) == 0 {
				_, err = fmt.Fprint(cmd.OutOrStdout(), script)
				return err
			}

			stem := strings.TrimSuffix(o.out, filepath.Ext(o.out))
			driver := protokoll.NewDriver(envOr("FS_TXT2TAGS", "txt2tags"), envOr("FS_PDFLATEX", "pdflatex"))
			if err := driver.Build(cmd.Context(), script, stem); err != nil {
				if diagnostic, ok := protokoll.ClassifyDiagnostic(err); ok {
					return fmt.Errorf("toolchain: %s", diagnostic)
				}
				return err
			}
			deps.Logger.LogInfof(nil, "wrote %s.{%s}", stem, strings.Join(protokoll.ArtifactExtensions, ","))
			return nil
		},
	}

	cmd.Flags().StringVar(&o.gremium, "gremium", "fsr", "committee id and name")
	cmd.Flags().StringVar(&o.title, "title", "", "meeting title")
	cmd.Flags().StringVar(&o.date, "date", time.Now().Format("2006-01-02"), "meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.begin, "begin", "", "begin of the session (HH:MM)")
	cmd.Flags().StringVar(&o.end, "end", "", "end of the session (HH:MM)")
	cmd.Flags().StringVar(&o.chair, "chair", "", "chair of the session")
	cmd.Flags().StringSliceVar(&o.minuteTakers, "minute-takers", nil, "comma separated minute takers")
	cmd.Flags().BoolVar(&o.approved, "approved", false, "render as approved minutes")
	cmd.Flags().BoolVar(&o.motions, "motions", true, "enable the motion tags")
	cmd.Flags().StringVar(&o.templatesDir, "templates", "templates", "directory of custom templates")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "build artifacts at this path stem")
	return cmd
}

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the typesetting toolchain is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := true
			for _, bin := range []string{envOr("FS_TXT2TAGS", "txt2tags"), envOr("FS_PDFLATEX", "pdflatex")} {
				path, err := exec.LookPath(bin)
				if err != nil {
					deps.Logger.LogWarnf(nil, "%s: not found", bin)
					ok = false
					continue
				}
				deps.Logger.LogInfof(nil, "%s: %s", bin, path)
			}
			if !ok {
				return errors.New("toolchain incomplete")
			}
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); len(v) > 0 {
		return v
	}
	return fallback
}
