package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/sealant-catalog-backend/internal/app"
	"github.com/yungbote/sealant-catalog-backend/internal/clients/redis"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/services"
)

// backend is what the commands need from a wired app.
type backend struct {
	Backup services.BackupService
	Audit  services.AuditService
	Events redis.CatalogEventBus
	Close  func()
}

type opener func(ctx context.Context) (*backend, error)

func openApp(ctx context.Context) (*backend, error) {
	a, err := app.New(ctx)
	if err != nil {
		return nil, err
	}
	return &backend{
		Backup: a.Services.Backup,
		Audit:  a.Services.Audit,
		Events: a.Clients.EventBus,
		Close:  a.Close,
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Manage sealant catalog backups and read the audit trail",
		SilenceUsage: true,
	}
	root.AddCommand(newBackupCmd(open), newAuditCmd(open), newEventsCmd(open))
	return root
}

// withBackend opens the backend for one command run and closes it after.
func withBackend(open opener, fn func(cmd *cobra.Command, args []string, be *backend) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		be, err := open(cmd.Context())
		if err != nil {
			return err
		}
		if be.Close != nil {
			defer be.Close()
		}
		return fn(cmd, args, be)
	}
}

func newBackupCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "backup", Short: "Create, inspect, promote and delete catalog backups"}

	var name, description, createdBy string
	create := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the live catalog",
		Args:  cobra.NoArgs,
		RunE: withBackend(open, func(cmd *cobra.Command, _ []string, be *backend) error {
			b, err := be.Backup.Create(cmd.Context(), services.CreateBackupInput{
				Name:        name,
				Description: description,
				CreatedBy:   createdBy,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		}),
	}
	create.Flags().StringVar(&name, "name", "", "backup name")
	create.Flags().StringVar(&description, "description", "", "backup description")
	create.Flags().StringVar(&createdBy, "by", "", "operator recorded as created_by")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("by")

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: withBackend(open, func(cmd *cobra.Command, _ []string, be *backend) error {
			out, err := be.Backup.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show backup metadata",
		Args:  cobra.ExactArgs(1),
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := be.Backup.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		}),
	}

	var previewLimit int
	preview := &cobra.Command{
		Use:   "preview ID",
		Short: "List the first products captured in a backup",
		Args:  cobra.ExactArgs(1),
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := be.Backup.Preview(cmd.Context(), id, previewLimit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	preview.Flags().IntVar(&previewLimit, "limit", 0, "number of products to show (server default when 0)")

	var promotedBy string
	promote := &cobra.Command{
		Use:   "promote ID",
		Short: "Replace the live catalog with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := be.Backup.Promote(cmd.Context(), id, promotedBy)
			if err != nil {
				return fmt.Errorf("promotion failed, no data was changed: %w", err)
			}
			out := map[string]any{
				"productsRestored": res.ProductsRestored,
				"previousCount":    res.PreviousCount,
			}
			if res.EmptySnapshot {
				out["warning"] = "backup contained no products; the catalog is now empty"
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}
	promote.Flags().StringVar(&promotedBy, "by", "", "operator recorded as promoted_by")
	_ = promote.MarkFlagRequired("by")

	var archivedBy string
	archive := &cobra.Command{
		Use:   "archive ID",
		Short: "Mark a backup archived",
		Args:  cobra.ExactArgs(1),
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := be.Backup.Archive(cmd.Context(), id, archivedBy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		}),
	}
	archive.Flags().StringVar(&archivedBy, "by", "", "operator recorded in the audit log")
	_ = archive.MarkFlagRequired("by")

	var deletedBy string
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a backup and its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := be.Backup.Delete(cmd.Context(), id, deletedBy)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("backup %d not found", id)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "id": id})
		}),
	}
	del.Flags().StringVar(&deletedBy, "by", "", "operator recorded in the audit log")

	cmd.AddCommand(create, list, get, preview, promote, archive, del)
	return cmd
}

func newAuditCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Read the audit trail"}

	var (
		action, entityType, entityID, userName string
		limit, offset                          int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: withBackend(open, func(cmd *cobra.Command, _ []string, be *backend) error {
			page, err := be.Audit.List(cmd.Context(), audit.Filter{
				Action:     audit.Action(strings.ToUpper(strings.TrimSpace(action))),
				EntityType: audit.EntityType(strings.ToLower(strings.TrimSpace(entityType))),
				EntityID:   entityID,
				UserName:   userName,
			}, limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		}),
	}
	list.Flags().StringVar(&action, "action", "", "CREATE, UPDATE, DELETE, RESTORE or BACKUP")
	list.Flags().StringVar(&entityType, "entity-type", "", "product, backup or system")
	list.Flags().StringVar(&entityID, "entity-id", "", "exact entity id")
	list.Flags().StringVar(&userName, "user", "", "case-insensitive user name substring")
	list.Flags().IntVar(&limit, "limit", 0, "page size (server default when 0)")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	cmd.AddCommand(list)
	return cmd
}

func newEventsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "events", Short: "Catalog change events (requires REDIS_ADDR)"}
	watch := &cobra.Command{
		Use:   "watch [CHANNEL...]",
		Short: "Print catalog events until interrupted",
		RunE: withBackend(open, func(cmd *cobra.Command, args []string, be *backend) error {
			if be.Events == nil {
				return fmt.Errorf("catalog events need REDIS_ADDR")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			out := cmd.OutOrStdout()
			if err := be.Events.StartForwarder(ctx, args, func(ev redis.CatalogEvent) {
				_ = printJSON(out, ev)
			}); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		}),
	}
	cmd.AddCommand(watch)
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid backup id %q", raw)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
