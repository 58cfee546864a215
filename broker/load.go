package broker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hmarr/realized"
	log "github.com/sirupsen/logrus"
)

// Load reads every file into a single trade batch with one monotonic
// sequence across files, in the order given. Formats are recognized by
// extension: ".csv" and ".json" are broker exports, ".jsonl" is the
// engine's own journal format.
func Load(paths ...string) ([]realized.Trade, realized.FeeTable, error) {
	var trades []realized.Trade
	fees := make(realized.FeeTable)
	seq := 1
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open %q: %w", path, err)
		}

		var batch []realized.Trade
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			imp, ierr := ImportCSV(f, seq)
			if ierr != nil {
				err = ierr
				break
			}
			batch = imp.Trades
			mergeFees(fees, imp.Fees)
		case ".json":
			imp, ierr := ImportJSON(f, seq)
			if ierr != nil {
				err = ierr
				break
			}
			batch = imp.Trades
			mergeFees(fees, imp.Fees)
		case ".jsonl":
			batch, err = realized.DecodeTrades(f)
		default:
			err = fmt.Errorf("unknown format %q", filepath.Ext(path))
		}
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot load %q: %w", path, err)
		}

		log.WithFields(log.Fields{"file": path, "trades": len(batch)}).Debug("loaded")
		for _, t := range batch {
			if t.Seq >= seq {
				seq = t.Seq + 1
			}
			trades = append(trades, t)
		}
	}
	if err := realized.Validate(trades); err != nil {
		return nil, nil, err
	}
	return trades, fees, nil
}

// LoadFees reads a broker export for its commission columns only. The
// trades it contains are discarded, so the same export can seed fees for a
// history loaded from another source.
func LoadFees(path string) (realized.FeeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer f.Close()

	var imp *Import
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		imp, err = ImportCSV(f, 1)
	case ".json":
		imp, err = ImportJSON(f, 1)
	default:
		err = fmt.Errorf("unknown format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load %q: %w", path, err)
	}
	return imp.Fees, nil
}

func mergeFees(dst, src realized.FeeTable) {
	for k, v := range src {
		dst[k] = dst[k].Add(v)
	}
}
