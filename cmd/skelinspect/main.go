// Command skelinspect prints the contents of GOBSKEL and GOBSKELANIM assets and packs them into
// LevelDB bundles.
//
// Usage:
//
//	skelinspect [-dir DIR | -db BUNDLE] -list
//	skelinspect [-dir DIR | -db BUNDLE] -skeleton NAME [-clip NAME [-time SECONDS]]
//	skelinspect -db BUNDLE -pack FILE...
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

type options struct {
	dir      string
	db       string
	list     bool
	pack     bool
	skeleton string
	clip     string
	time     float64
	verbose  bool
	files    []string
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", ".", "asset directory for the file backend")
	flag.StringVar(&opts.db, "db", "", "LevelDB asset bundle; overrides -dir")
	flag.BoolVar(&opts.list, "list", false, "list the assets in the directory or bundle")
	flag.BoolVar(&opts.pack, "pack", false, "store the remaining arguments into the -db bundle")
	flag.StringVar(&opts.skeleton, "skeleton", "", "skeleton asset to print")
	flag.StringVar(&opts.clip, "clip", "", "clip asset to print, checked against -skeleton")
	flag.Float64Var(&opts.time, "time", -1, "sample -clip at this time and print the model-space pose")
	flag.BoolVar(&opts.verbose, "v", false, "log loader activity to stderr")
	flag.Parse()
	opts.files = flag.Args()

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "skelinspect:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, opts options) error {
	if opts.verbose {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	l, err := openLoader(opts)
	if err != nil {
		return err
	}
	defer l.Close()

	switch {
	case opts.pack:
		return pack(w, l, opts.files)
	case opts.list:
		return list(w, l)
	case opts.skeleton != "":
		return inspect(w, l, opts)
	}
	flag.Usage()
	return errors.New("nothing to do")
}

func openLoader(opts options) (loader.Loader, error) {
	if opts.db != "" {
		return loader.NewLoader(loader.BackendTypeLevelDB, loader.WithDatabasePath(opts.db))
	}
	if opts.pack {
		return nil, errors.New("-pack requires -db")
	}
	return loader.NewLoader(loader.BackendTypeFile, loader.WithBaseDir(opts.dir))
}

func pack(w io.Writer, l loader.Loader, files []string) error {
	if len(files) == 0 {
		return errors.New("-pack needs at least one file")
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Base(f))
		if err := l.Store(name, data); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		fmt.Fprintf(w, "packed %s (%d bytes)\n", name, len(data))
	}
	return nil
}

func list(w io.Writer, l loader.Loader) error {
	names, err := l.Names()
	if err != nil {
		return err
	}
	slices.Sort(names)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, name := range names {
		format, _ := loader.FormatFor(name)
		fmt.Fprintf(tw, "%s\t%s\n", format, name)
	}
	return nil
}

func inspect(w io.Writer, l loader.Loader, opts options) error {
	skel, err := l.LoadSkeleton(opts.skeleton)
	if err != nil {
		return err
	}
	printSkeleton(w, skel)

	if opts.clip == "" {
		return nil
	}
	clip, err := l.LoadClip(opts.clip, skel)
	if err != nil {
		return err
	}
	printClip(w, clip)

	if opts.time < 0 {
		return nil
	}
	return printPose(w, skel, clip, float32(opts.time))
}

func printSkeleton(w io.Writer, skel skeleton.Skeleton) {
	fmt.Fprintf(w, "skeleton %q: %d joints, root %d\n", skel.Name(), skel.JointCount(), skel.RootJointIndex())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "joint\tparent\tname\tbind position")
	for i := range skel.JointCount() {
		// The bind position is the translation of the inverse of the inverse bind matrix.
		bind := skel.InverseBindMatrix(i).Inv().Col(3)
		fmt.Fprintf(tw, "%d\t%d\t%s\t(%.3f, %.3f, %.3f)\n", i, skel.ParentIndex(i), skel.JointName(i), bind.X(), bind.Y(), bind.Z())
	}
}

func printClip(w io.Writer, clip animation.Clip) {
	fmt.Fprintf(w, "clip %q: %.3fs, %d joints\n", clip.Name(), clip.Duration(), clip.JointCount())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "joint\tscale keys\trotation keys\ttranslation keys")
	for i := range clip.JointCount() {
		ja := clip.JointAnimation(i)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", i, ja.Scale.Len(), ja.Rotate.Len(), ja.Translate.Len())
	}
}

func printPose(w io.Writer, skel skeleton.Skeleton, clip animation.Clip, t float32) error {
	local := make([]common.Transform, skel.JointCount())
	if err := animation.SampleSkeletonAnimation(local, t, clip); err != nil {
		return err
	}
	model := make([]common.Transform, skel.JointCount())
	if err := hierarchy.LocalPosesToModelSpace(model, local, skel); err != nil {
		return err
	}

	fmt.Fprintf(w, "model-space pose at %.3fs\n", t)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "joint\tposition\trotation (w, x, y, z)")
	for i, m := range model {
		p, q := m.Position, m.Rotation
		fmt.Fprintf(tw, "%d\t(%.3f, %.3f, %.3f)\t(%.3f, %.3f, %.3f, %.3f)\n", i, p.X(), p.Y(), p.Z(), q.W, q.V.X(), q.V.Y(), q.V.Z())
	}
	return nil
}
