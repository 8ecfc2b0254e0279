package stream

import (
	"bufio"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
)

const textMagic = "TECTONIC\x00"

// WriteText writes codes to path using the plain-text container ("format
// 000"): equivalent semantics to the binary format, useful for debugging
// and for interop with tools that do not want to parse the segmented
// binary layout.
func WriteText(fs afero.Fs, path string, b base.Base, codes []*big.Int) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("tectonic: create text container: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, textMagic)
	fmt.Fprintln(w, b.H)
	fmt.Fprintln(w, b.W)
	fmt.Fprintln(w, b.M)
	fmt.Fprintf(w, "%10d\n", len(codes))
	for _, c := range codes {
		fmt.Fprintln(w, c.String())
	}
	fmt.Fprintln(w, "-1")
	return w.Flush()
}

// ReadText parses a format-000 container.
func ReadText(fs afero.Fs, path string) ([]*big.Int, base.Base, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, base.Base{}, fmt.Errorf("tectonic: open text container: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	readLine := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("%w: %v", ErrContainerCorruption, err)
			}
			return "", fmt.Errorf("%w: unexpected EOF", ErrContainerCorruption)
		}
		return sc.Text(), nil
	}

	magicLine, err := readLine()
	if err != nil {
		return nil, base.Base{}, err
	}
	if magicLine != strings.TrimRight(textMagic, "\n") {
		return nil, base.Base{}, fmt.Errorf("%w: bad magic", ErrContainerCorruption)
	}

	h, err := readIntLine(readLine)
	if err != nil {
		return nil, base.Base{}, err
	}
	w, err := readIntLine(readLine)
	if err != nil {
		return nil, base.Base{}, err
	}
	m, err := readIntLine(readLine)
	if err != nil {
		return nil, base.Base{}, err
	}
	b, err := base.New(h, w, m)
	if err != nil {
		return nil, base.Base{}, fmt.Errorf("%w: %v", ErrContainerCorruption, err)
	}

	countLine, err := readLine()
	if err != nil {
		return nil, base.Base{}, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return nil, base.Base{}, fmt.Errorf("%w: bad count line: %v", ErrContainerCorruption, err)
	}

	codes := make([]*big.Int, 0, count)
	for {
		line, err := readLine()
		if err != nil {
			return nil, base.Base{}, err
		}
		line = strings.TrimSpace(line)
		if line == "-1" {
			break
		}
		v, ok := new(big.Int).SetString(line, 10)
		if !ok {
			return nil, base.Base{}, fmt.Errorf("%w: bad code line %q", ErrContainerCorruption, line)
		}
		codes = append(codes, v)
	}
	if len(codes) != count {
		return nil, base.Base{}, fmt.Errorf("%w: declared count %d, got %d codes", ErrContainerCorruption, count, len(codes))
	}
	return codes, b, nil
}

func readIntLine(readLine func() (string, error)) (int, error) {
	line, err := readLine()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: bad integer line %q: %v", ErrContainerCorruption, line, err)
	}
	return v, nil
}
