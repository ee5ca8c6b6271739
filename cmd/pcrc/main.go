package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/keshon/pcrc/internal/blockio"
	"github.com/keshon/pcrc/internal/checksum"
	"github.com/keshon/pcrc/internal/config"
	"github.com/keshon/pcrc/internal/crc32c"
	"github.com/keshon/pcrc/internal/progress"
	"github.com/keshon/pcrc/internal/sumdb"
	"github.com/keshon/pcrc/internal/util"
)

const version = "1.1.0"

var cfg config.Config

func main() {
	cfg = config.Load()

	app := cli.NewApp()
	app.Name = "pcrc"
	app.Usage = "parallel CRC32C checksums of files and device images"
	app.ArgsUsage = "[path ...]"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "threads, t",
			Usage: "number of worker threads (0 = one per CPU)",
			Value: cfg.Threads,
		},
		cli.StringFlag{
			Name:  "block-size, b",
			Usage: "read block size, e.g. 16MiB or 4194304",
			Value: cfg.BlockSize,
		},
		cli.BoolFlag{
			Name:  "fill-zero",
			Usage: "zero-fill reads that come back short of the expected length",
		},
		cli.BoolFlag{
			Name:  "direct",
			Usage: "bypass the page cache where the platform supports it",
		},
		cli.BoolFlag{
			Name:  "mmap",
			Usage: "read through a memory map instead of read(2)",
		},
		cli.BoolFlag{
			Name:  "progress",
			Usage: "show per-file byte progress on stderr",
		},
		cli.StringFlag{
			Name:  "db",
			Usage: "append results to a SQLite database at `PATH`",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("pcrc: %v", err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	paths := c.Args()
	if len(paths) == 0 {
		return sumStdin(os.Stdin, os.Stdout)
	}

	threads := c.Int("threads")
	if threads == 0 {
		threads = util.WorkerCount()
	}
	if threads < 0 {
		return errors.Errorf("invalid thread count %d", threads)
	}

	blockSize := int64(config.DefaultBlockSize)
	if s := c.String("block-size"); s != "" {
		n, err := util.ParseSize(s)
		if err != nil {
			return err
		}
		if n <= 0 {
			return errors.Errorf("block size %q must be positive", s)
		}
		blockSize = n
	}

	direct := c.Bool("direct") || cfg.Direct
	if c.Bool("mmap") && direct {
		return errors.New("--mmap and --direct are mutually exclusive")
	}
	if direct && blockSize%blockio.Alignment != 0 {
		return errors.Errorf("block size %d is not a multiple of %d, required for direct I/O", blockSize, blockio.Alignment)
	}

	var db *sumdb.DB
	if dbPath := c.String("db"); dbPath != "" {
		var err error
		if db, err = sumdb.Open(dbPath); err != nil {
			return err
		}
		defer db.Close()
	}

	summer := checksum.New(checksum.Options{
		Threads:   threads,
		BlockSize: int(blockSize),
		FillZero:  c.Bool("fill-zero") || cfg.FillZero,
	})
	defer summer.Close()

	opts := blockio.OpenOptions{
		PreferDirect: direct,
		Mmap:         c.Bool("mmap"),
	}

	// One file failing must not stop the rest; lines already printed
	// stay valid either way.
	failed := false
	for _, path := range paths {
		if err := sumOne(summer, path, opts, c.Bool("progress"), db); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("pcrc: %v", err))
			failed = true
		}
	}
	if failed {
		return cli.NewExitError("", 1)
	}
	return nil
}

func sumOne(summer *checksum.Summer, path string, opts blockio.OpenOptions, showProgress bool, db *sumdb.DB) error {
	h, err := blockio.Open(path, opts)
	if err != nil {
		return err
	}
	defer h.Close()

	var report func(int64)
	if showProgress {
		total, _ := h.Size() // unknown sizes just lose the percentage
		bar := progress.NewProgress(total, path)
		defer bar.Finish()
		report = bar.Add
	}

	crc, size, err := summer.Sum(h, path, report)
	if err != nil {
		return err
	}

	fmt.Printf("%08X %s\n", crc, path)
	if db != nil {
		return db.Add(path, crc, size)
	}
	return nil
}

// sumStdin is the fallback when no paths are given: a plain sequential,
// line-delimited checksum of standard input.
func sumStdin(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	var crc uint32
	for {
		line, err := br.ReadBytes('\n')
		crc = crc32c.Update(crc, line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}
	}
	_, err := fmt.Fprintf(w, "%08X -\n", crc)
	return err
}
