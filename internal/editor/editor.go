package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nihilian/ncheditor/pkg/api"
)

// ErrIDChanged is returned when an edited document renames its record.
var ErrIDChanged = errors.New("id cannot be changed")

// ComposeContent renders r as the TOML document presented to the editor.
// A group is written without its channels.
func ComposeContent(r api.Record) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# ncheditor %s\n", r.Kind())
	b.WriteString("# Lines starting with '#' are ignored. Remove a key to keep its value.\n")
	b.WriteString("# Run 'ncheditor fields' for the meaning of each key.\n\n")

	doc := r
	if g, ok := r.(*api.ChannelGroup); ok {
		bare := *g
		bare.Channels = nil
		doc = &bare
	}
	if err := toml.NewEncoder(&b).Encode(doc); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ParseEdited applies the edited document to r. Keys missing from the
// document keep their current value; unknown keys and a changed id are
// rejected and leave r untouched.
func ParseEdited(data []byte, r api.Record) error {
	switch v := r.(type) {
	case *api.Channel:
		next := *v
		next.VibrationPattern = append([]int64(nil), v.VibrationPattern...)
		if err := decodeInto(data, &next, v.ID, &next.ID); err != nil {
			return err
		}
		next.Normalize()
		*v = next
	case *api.ChannelGroup:
		next := *v
		next.Channels = nil
		if err := decodeInto(data, &next, v.ID, &next.ID); err != nil {
			return err
		}
		next.Normalize()
		next.Channels = v.Channels
		*v = next
	default:
		return fmt.Errorf("cannot edit %T", r)
	}
	return nil
}

func decodeInto(data []byte, dst any, id string, gotID *string) error {
	md, err := toml.Decode(string(data), dst)
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrInvalidValue, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: %q", api.ErrUnknownField, undecoded[0].String())
	}
	if *gotID != id {
		return fmt.Errorf("%w: %q -> %q", ErrIDChanged, id, *gotID)
	}
	return nil
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathFor returns the temp file a record of pkg is edited in.
func PathFor(pkg, id string, kind api.Kind) (string, error) {
	name := sanitize(pkg) + "." + sanitize(id) + "." + string(kind) + ".toml"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "ncheditor", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "ncheditor", "edit", name), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// VISUAL/EDITOR may carry flags, so run them through a shell.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}
