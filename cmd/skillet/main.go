package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	skillet "github.com/reoring/skillet"
	"github.com/reoring/skillet/i18n"
	"github.com/reoring/skillet/internal/config"
	"github.com/reoring/skillet/jsonschema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "emit":
		emitCmd(os.Args[2:])
	case "import":
		importCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "encode":
		encodeCmd(os.Args[2:])
	case "stream":
		if err := streamCmd(os.Args[2:]); err != nil {
			printIssues(err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "skillet CLI\n\nUsage:\n  skillet emit -in schema.json [-o out.json]\n  skillet import -in schema.yaml\n  skillet validate -schema schema.json -in value.json\n  skillet encode -schema schema.json -in value.json\n  skillet stream -schema schema.json -in response.txt [-chunk 16]\n\nNotes:\n  - emit and import also accept the document as -schema.\n  - Schema files ending in .yaml or .yml are read as YAML.\n  - Settings may also come from SKILLET_* environment variables or a .env file.")
}

type common struct {
	cfg    *config.Config
	schema string
	in     string
	out    string
	log    *slog.Logger
}

func parseCommon(name string, args []string, needIn bool) common {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var c common
	fs.StringVar(&c.schema, "schema", "", "schema document (JSON or YAML)")
	fs.StringVar(&c.in, "in", "", "input file")
	fs.StringVar(&c.out, "o", "", "output filename (default stdout)")
	cfg, err := config.Load(fs, args)
	if err != nil {
		fatalf("config: %v", err)
	}
	if !needIn && c.schema == "" {
		c.schema = c.in
	}
	if c.schema == "" || (needIn && c.in == "") {
		fs.Usage()
		os.Exit(2)
	}
	c.cfg = cfg
	c.log = cfg.Logger(os.Stderr)
	i18n.SetLanguage(cfg.Lang)
	return c
}

func emitCmd(args []string) {
	c := parseCommon("emit", args, false)
	s := loadSchema(c)
	out, err := jsonschema.EmitJSON(s)
	if err != nil {
		fatalf("emit: %v", err)
	}
	if err := writeOut(c, append(out, '\n')); err != nil {
		fatalf("%v", err)
	}
}

func importCmd(args []string) {
	c := parseCommon("import", args, false)
	s := loadSchema(c)
	root := s.RootNode()
	fmt.Printf("ok: root=%s nodes=%d\n", root.Kind, s.Graph().Len())
}

func validateCmd(args []string) {
	c := parseCommon("validate", args, true)
	s := loadSchema(c)
	v := loadValue(c)
	out, err := skillet.Validate(s, v)
	if err != nil {
		printIssues(err)
		os.Exit(1)
	}
	writeJSON(c, out)
}

func encodeCmd(args []string) {
	c := parseCommon("encode", args, true)
	s := loadSchema(c)
	v := loadValue(c)
	out, err := skillet.Encode(s, v)
	if err != nil {
		printIssues(err)
		os.Exit(1)
	}
	writeJSON(c, out)
}

// snapshotLine is one line of stream output.
type snapshotLine struct {
	Bytes       int             `json:"bytes"`
	Final       bool            `json:"final"`
	State       string          `json:"state"`
	Value       any             `json:"value,omitempty"`
	Diagnostics []skillet.Issue `json:"diagnostics,omitempty"`
}

// streamCmd replays a recorded response in fixed-size chunks and prints one
// snapshot per chunk. Errors are returned so deferred cleanup runs before the
// process exits.
func streamCmd(args []string) error {
	c := parseCommon("stream", args, true)
	if c.cfg.ChunkSize <= 0 {
		return fmt.Errorf("stream: -chunk must be positive")
	}
	s := loadSchema(c)
	f, err := os.Open(c.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	defer f.Close()
	sess := skillet.NewSession(s,
		skillet.WithLogger(c.log),
		skillet.WithMaxDepth(c.cfg.MaxDepth),
		skillet.WithMaxBytes(c.cfg.MaxBytes),
	)
	c.log.Debug("stream start", "session_id", sess.ID(), "chunk", c.cfg.ChunkSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	_, err = skillet.Drain(ctx, sess, skillet.ReaderSource(f, c.cfg.ChunkSize), func(snap skillet.Snapshot) error {
		line := snapshotLine{
			Bytes:       len(sess.Text()),
			Final:       snap.Final,
			State:       snap.State().String(),
			Diagnostics: snap.Diagnostics,
		}
		if snap.HasValue {
			line.Value = snap.Value
		}
		return enc.Encode(line)
	})
	if werr := writeOut(c, buf.Bytes()); werr != nil {
		return werr
	}
	return err
}

func loadSchema(c common) *skillet.Schema {
	data, err := os.ReadFile(c.schema)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	var s *skillet.Schema
	switch strings.ToLower(filepath.Ext(c.schema)) {
	case ".yaml", ".yml":
		s, err = jsonschema.ImportYAML(data)
	default:
		s, err = jsonschema.Import(data)
	}
	if err != nil {
		fatalf("import %s: %v", c.schema, err)
	}
	c.log.Debug("schema loaded", "path", c.schema, "nodes", s.Graph().Len())
	return s
}

func loadValue(c common) any {
	data, err := os.ReadFile(c.in)
	if err != nil {
		fatalf("read input: %v", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		fatalf("decode input: %v", err)
	}
	return v
}

func writeJSON(c common, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode output: %v", err)
	}
	if err := writeOut(c, append(out, '\n')); err != nil {
		fatalf("%v", err)
	}
}

func writeOut(c common, data []byte) error {
	var w io.Writer = os.Stdout
	if c.out != "" {
		if err := os.MkdirAll(filepath.Dir(c.out), 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		f, err := os.Create(c.out)
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func printIssues(err error) {
	iss, ok := skillet.AsIssues(err)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, is := range iss {
		path := is.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(os.Stderr, "%s\t%s\t%s\n", is.Code, path, is.Message)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
