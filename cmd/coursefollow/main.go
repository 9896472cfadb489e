// Command coursefollow plays a course video's transcript in the terminal, driven by a
// simulated playback clock.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lightgray/lightgray/internal/catalog"
	"github.com/lightgray/lightgray/internal/content"
	"github.com/lightgray/lightgray/internal/playback"
	"github.com/lightgray/lightgray/internal/transcript"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "coursefollow:", err)
		os.Exit(1)
	}
}

type options struct {
	contentDir string
	catalog    string
	course     string
	video      string
	start      float64
	speed      float64
	interval   time.Duration
	timeout    time.Duration
	list       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("coursefollow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.contentDir, "content", ".", "content root containing the catalog and transcripts")
	fs.StringVar(&o.catalog, "catalog", catalog.DefaultPath, "catalog path relative to -content, or an http(s) URL")
	fs.StringVar(&o.course, "course", "", "course name to follow")
	fs.StringVar(&o.video, "video", "", "video URL within the course (default: first by title)")
	fs.Float64Var(&o.start, "start", 0, "start position in seconds")
	fs.Float64Var(&o.speed, "speed", 1, "playback rate")
	fs.DurationVar(&o.interval, "interval", playback.DefaultInterval, "transcript poll interval")
	fs.DurationVar(&o.timeout, "timeout", transcript.DefaultTimeout, "transcript fetch timeout")
	fs.BoolVar(&o.list, "list", false, "list courses and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.course == "" && fs.NArg() > 0 {
		o.course = fs.Arg(0)
	}
	if o.interval <= 0 {
		o.interval = playback.DefaultInterval
	}
	if o.timeout <= 0 {
		o.timeout = transcript.DefaultTimeout
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	src := content.Router{Local: content.NewDir(o.contentDir), Remote: content.NewHTTP(o.timeout)}
	reader := catalog.NewReader(src, o.catalog)

	if o.list || o.course == "" {
		listCourses(ctx, reader, stdout)
		return nil
	}

	course, ok := reader.GetCourse(ctx, o.course)
	if !ok {
		return fmt.Errorf("course %q not found", o.course)
	}
	video, _ := catalog.ResolveCurrentVideo(course, o.video)
	if video.TranscriptRef == "" {
		return fmt.Errorf("video %q has no transcript", video.Title)
	}

	fetcher := transcript.NewFetcher(src, o.timeout)
	fmt.Fprintf(stdout, "%s / %s\n", catalog.DisplayName(course.Name), video.Title)

	return follow(ctx, fetcher, video, o, stdin, stdout)
}

func listCourses(ctx context.Context, reader *catalog.Reader, w io.Writer) {
	courses := reader.ListCourses(ctx)
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses available.")
		return
	}
	for _, name := range catalog.Names(courses) {
		videos := catalog.SortVideos(courses[name])
		fmt.Fprintf(w, "%s (%d videos)\n", name, len(videos))
		for _, v := range videos {
			marker := " "
			if v.TranscriptRef != "" {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s  %s\n", marker, v.Title, v.URL)
		}
	}
}

// follow starts the clock right away and loads the transcript in the background, the
// way the page does: polls that land before the fetch completes show nothing.
func follow(ctx context.Context, fetcher *transcript.Fetcher, video catalog.Video, o options, stdin io.Reader, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	track := &transcript.Track{}
	loaded := track.Load(ctx, fetcher, video.TranscriptRef)

	clock := playback.NewClock(0, o.speed)
	printer := &linePrinter{w: stdout, clock: clock}
	ctrl := playback.New(clock, track, playback.DisplayFunc(printer.show), o.interval)
	clock.OnStateChange(ctrl.StateChange)

	ctrl.Mount(ctx)
	defer ctrl.Unmount()
	ctrl.Ready()

	clock.Seek(o.start)
	clock.Play()

	go readCommands(stdin, clock, cancel)

	select {
	case <-ctx.Done():
		return nil
	case <-loaded:
	}
	if ctx.Err() != nil {
		return nil
	}
	segments := track.Segments()
	if len(segments) == 0 {
		return errors.New("transcript is empty or could not be loaded")
	}

	// The clock ends with the last cue; the controller's poll notices it.
	var end float64
	for _, s := range segments {
		end = max(end, s.End)
	}
	clock.SetDuration(end)

	select {
	case <-ctx.Done():
	case <-ctrl.Ended():
		printer.println("[end]")
	}
	return nil
}

// readCommands handles "p" (pause/resume), "s SECONDS" (seek) and "q" (quit).
func readCommands(r io.Reader, clock *playback.Clock, quit context.CancelFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "p":
			if clock.Status() == playback.Playing {
				clock.Pause()
			} else {
				clock.Play()
			}
		case "s":
			if len(fields) < 2 {
				continue
			}
			if t, err := strconv.ParseFloat(fields[1], 64); err == nil {
				clock.Seek(t)
			}
		case "q":
			quit()
			return
		}
	}
}

// linePrinter prints each new transcript line once, prefixed with the clock position.
type linePrinter struct {
	mu    sync.Mutex
	w     io.Writer
	clock *playback.Clock
	last  string
}

func (p *linePrinter) show(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == p.last {
		return
	}
	p.last = text
	if text == "" {
		return
	}
	pos := int(p.clock.CurrentTime())
	fmt.Fprintf(p.w, "[%02d:%02d] %s\n", pos/60, pos%60, text)
}

func (p *linePrinter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}
