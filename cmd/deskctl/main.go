// Command deskctl is the front-desk companion to the booking API. It keeps a
// local copy of the appointment book so the desk can keep working when the
// API is unreachable, and it raises reminders shortly before appointments
// start.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/core/reconcile"
	"github.com/zetas/barbershop/internal/core/reminder"
	"github.com/zetas/barbershop/internal/infrastructure/apiclient"
	"github.com/zetas/barbershop/internal/infrastructure/cache"
	"github.com/zetas/barbershop/internal/infrastructure/config"
	"github.com/zetas/barbershop/internal/infrastructure/db/redis"
	"github.com/zetas/barbershop/internal/infrastructure/notify"
	"github.com/zetas/barbershop/internal/infrastructure/sms"
	"github.com/zetas/barbershop/pkg/logger"
)

const usage = `usage: deskctl <command> [flags]

commands:
  watch                      poll the book and raise reminders
  list   [-date YYYY-MM-DD]  print appointments
  book   -name -date -time   create an appointment
  edit   <id> [flags]        change fields of an appointment
  status <id> <status>       set pending|confirmed|completed|cancelled
  delete <id>                remove an appointment
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "deskctl:", err)
		os.Exit(1)
	}
}

type desk struct {
	cfg    *config.DeskConfig
	client *reconcile.Client
	log    zerolog.Logger
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.LoadDesk(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr, Service: "deskctl"})

	d := &desk{
		cfg: cfg,
		client: reconcile.New(
			apiclient.New(cfg.APIURL, cfg.AdminPassword),
			cache.NewLocal(cfg.CacheDir, logger.Component("cache")),
			0,
			logger.Component("reconcile"),
		),
		log: log,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "watch":
		return d.watch(ctx, out)
	case "list":
		return d.list(ctx, rest, out)
	case "book":
		return d.book(ctx, rest, out)
	case "edit":
		return d.edit(ctx, rest, out)
	case "status":
		return d.status(ctx, rest, out)
	case "delete":
		return d.delete(ctx, rest, out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (d *desk) watch(ctx context.Context, out io.Writer) error {
	notifiers := []ports.Notifier{notify.NewLogNotifier(logger.Component("reminder"))}
	if d.cfg.Bell {
		notifiers = append(notifiers, notify.NewBellNotifier(out))
	}
	if d.cfg.SMSReminders {
		gw := sms.NewTwilioGateway(d.cfg.Twilio.AccountSID, d.cfg.Twilio.AuthToken, d.cfg.Twilio.FromNumber, d.cfg.Twilio.BaseURL, logger.Component("twilio"))
		if !gw.Configured() {
			d.log.Warn().Msg("DESK_SMS_REMINDERS set but Twilio credentials are missing")
		}
		notifiers = append(notifiers, notify.NewSMSNotifier(gw))
	}

	var notified ports.NotifiedSet
	if d.cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: d.cfg.RedisAddr})
		if err != nil {
			return err
		}
		defer client.Close()
		notified = redis.NewNotifiedSet(client)
	}

	p := reminder.NewPoller(d.client, notified, notifiers, reminder.Config{Interval: d.cfg.PollInterval}, logger.Component("reminder"))
	d.log.Info().Str("api", d.cfg.APIURL).Dur("interval", d.cfg.PollInterval).Msg("watching appointments")
	p.Run(ctx)
	return nil
}

func (d *desk) list(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	date := fs.String("date", "", "only show this day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appts, err := d.client.Fetch(ctx)
	if err != nil {
		return err
	}
	if *date != "" {
		filtered := appts[:0:0]
		for _, a := range appts {
			if a.Date == *date {
				filtered = append(filtered, a)
			}
		}
		appts = filtered
	}
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].StartTime < appts[j].StartTime
	})

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tCLIENT\tSERVICE\tSTATUS\tID")
	for _, a := range appts {
		id := a.ID
		if strings.HasPrefix(id, reconcile.LocalIDPrefix) {
			id += " (unsynced)"
		}
		fmt.Fprintf(tw, "%s\t%s-%s\t%s\t%s\t%s\t%s\n", a.Date, a.StartTime, a.EndTime, a.ClientName, a.Service, a.Status, id)
	}
	return tw.Flush()
}

func (d *desk) book(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	name := fs.String("name", "", "client name")
	phone := fs.String("phone", "", "client phone")
	date := fs.String("date", "", "day (YYYY-MM-DD)")
	start := fs.String("time", "", "start time (HH:MM)")
	end := fs.String("end", "", "end time (HH:MM), derived when empty")
	svc := fs.String("service", "", "service name")
	status := fs.String("status", "", "initial status, pending when empty")
	notes := fs.String("notes", "", "free text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *date == "" || *start == "" {
		return errors.New("book: -name, -date and -time are required")
	}

	a, err := d.client.Create(ctx, domain.Appointment{
		ClientName:  *name,
		ClientPhone: *phone,
		Date:        *date,
		StartTime:   *start,
		EndTime:     *end,
		Service:     *svc,
		Status:      domain.AppointmentStatus(*status),
		Notes:       *notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "booked %s %s %s-%s (%s)\n", a.ID, a.Date, a.StartTime, a.EndTime, a.Status)
	return nil
}

func (d *desk) edit(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("edit: missing id")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	var patch ports.AppointmentPatch
	fs.Func("name", "client name", func(v string) error { patch.ClientName = &v; return nil })
	fs.Func("phone", "client phone", func(v string) error { patch.ClientPhone = &v; return nil })
	fs.Func("date", "day (YYYY-MM-DD)", func(v string) error { patch.Date = &v; return nil })
	fs.Func("time", "start time (HH:MM)", func(v string) error { patch.StartTime = &v; return nil })
	fs.Func("end", "end time (HH:MM)", func(v string) error { patch.EndTime = &v; return nil })
	fs.Func("service", "service name", func(v string) error { patch.Service = &v; return nil })
	fs.Func("notes", "free text", func(v string) error { patch.Notes = &v; return nil })
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	a, err := d.client.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "updated %s %s %s-%s\n", a.ID, a.Date, a.StartTime, a.EndTime)
	return nil
}

func (d *desk) status(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("status: want <id> <status>")
	}
	a, err := d.client.ChangeStatus(ctx, args[0], domain.AppointmentStatus(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now %s\n", a.ID, a.Status)
	return nil
}

func (d *desk) delete(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete: want <id>")
	}
	if err := d.client.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", args[0])
	return nil
}
