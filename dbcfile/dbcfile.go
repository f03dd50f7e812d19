// Package dbcfile is the textual .dbc grammar reader: it turns a Vector
// DBC file into the dbcgen.MessageDescription values the planner consumes.
// It only understands a handful of top-level line kinds (BO_, SG_,
// BA_ "GenMsgCycleTime", VAL_); every other line, including CM_ comments
// and attribute definitions, is tolerated and skipped rather than treated
// as a parse failure — an unrecognised line never aborts generation.
package dbcfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tegimeki/dbcgen"
)

// extendedIDFlag marks a BO_ message ID as 29-bit extended, per the DBC
// convention of setting the CAN ID's top bit in the file.
const extendedIDFlag = 0x80000000

// Warning is a non-fatal finding produced while reading a file: a BO_,
// SG_, VAL_ or BA_ "GenMsgCycleTime" line that does not parse, an SG_ line
// outside any BO_ block, or a VAL_/BA_ line naming a message or signal that
// was never declared by a BO_/SG_ block. Unrecognised lines are skipped
// without a Warning.
type Warning struct {
	Line int
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %v", w.Line, w.Err)
}

// Parse reads a complete .dbc source and returns the messages it declares,
// in file order, along with any non-fatal Warnings encountered. Signals
// are attached to the most recently seen BO_ block.
func Parse(r io.Reader) ([]dbcgen.MessageDescription, []Warning, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var messages []dbcgen.MessageDescription
	indexByID := map[uint32]int{}
	var warnings []Warning

	lineNo := 0
	currentMsg := -1

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "BO_ "):
			msg, err := parseBO(line)
			if err != nil {
				warnings = append(warnings, Warning{Line: lineNo, Err: err})
				currentMsg = -1
				continue
			}
			indexByID[msg.ID&^extendedIDFlag] = len(messages)
			messages = append(messages, msg)
			currentMsg = len(messages) - 1

		case strings.HasPrefix(line, "SG_ "):
			if currentMsg < 0 {
				warnings = append(warnings, Warning{Line: lineNo, Err: fmt.Errorf("%w: SG_ line outside of a BO_ block", dbcgen.ErrUnknownAttribute)})
				continue
			}
			sig, err := parseSG(line)
			if err != nil {
				warnings = append(warnings, Warning{Line: lineNo, Err: err})
				continue
			}
			messages[currentMsg].Signals = append(messages[currentMsg].Signals, sig)

		case strings.HasPrefix(line, `BA_ "GenMsgCycleTime"`):
			id, cycle, err := parseCycleTime(line)
			if err != nil {
				warnings = append(warnings, Warning{Line: lineNo, Err: err})
				continue
			}
			idx, ok := indexByID[id&^extendedIDFlag]
			if !ok {
				warnings = append(warnings, Warning{Line: lineNo, Err: fmt.Errorf("%w: GenMsgCycleTime for unknown message %d", dbcgen.ErrUnknownMessage, id)})
				continue
			}
			messages[idx].CycleTime = &cycle

		case strings.HasPrefix(line, "VAL_ "):
			id, sigName, labels, err := parseVAL(line)
			if err != nil {
				warnings = append(warnings, Warning{Line: lineNo, Err: err})
				continue
			}
			idx, ok := indexByID[id&^extendedIDFlag]
			if !ok {
				warnings = append(warnings, Warning{Line: lineNo, Err: fmt.Errorf("%w: VAL_ for unknown message %d", dbcgen.ErrUnknownMessage, id)})
				continue
			}
			found := false
			for i := range messages[idx].Signals {
				if messages[idx].Signals[i].Name == sigName {
					messages[idx].Signals[i].ValueTable = labels
					found = true
					break
				}
			}
			if !found {
				warnings = append(warnings, Warning{Line: lineNo, Err: fmt.Errorf("%w: VAL_ for unknown signal %q", dbcgen.ErrUnknownSignal, sigName)})
			}

		default:
			// BU_, CM_, BA_DEF_, attribute defaults and anything else the
			// grammar defines but this generator does not need land here;
			// tolerated rather than treated as a parse error.
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	return messages, warnings, nil
}

// parseBO parses a `BO_ <id> <name>: <dlc> <sender>` line.
func parseBO(line string) (dbcgen.MessageDescription, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return dbcgen.MessageDescription{}, fmt.Errorf("dbcfile: malformed BO_ line %q", line)
	}
	rawID, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return dbcgen.MessageDescription{}, fmt.Errorf("dbcfile: BO_ id: %w", err)
	}
	name := strings.TrimSuffix(fields[2], ":")
	dlc, err := strconv.ParseUint(fields[3], 10, 8)
	if err != nil {
		return dbcgen.MessageDescription{}, fmt.Errorf("dbcfile: BO_ dlc: %w", err)
	}

	extended := uint32(rawID)&extendedIDFlag != 0
	return dbcgen.MessageDescription{
		Name:     name,
		ID:       uint32(rawID) &^ extendedIDFlag,
		Extended: extended,
		DLC:      uint8(dlc),
	}, nil
}

// parseSG parses a `SG_ <name> : <start>|<len>@<order><sign> (<scale>,<offset>) [<min>|<max>] "<unit>" <receivers>` line.
func parseSG(line string) (dbcgen.SignalDescription, error) {
	rest := strings.TrimPrefix(line, "SG_ ")
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: malformed SG_ line %q", line)
	}
	name := strings.TrimSpace(rest[:colon])
	// a multiplexed signal's name is followed by an "M" or "mN" token
	// before the colon; this generator does not model multiplexing, so only
	// the first token, the bare name, is kept.
	if sp := strings.IndexByte(name, ' '); sp >= 0 {
		name = name[:sp]
	}

	layout := strings.TrimSpace(rest[colon+1:])
	fields := strings.Fields(layout)
	if len(fields) < 3 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: malformed SG_ layout %q", line)
	}

	startWidthOrder := fields[0]
	at := strings.IndexByte(startWidthOrder, '@')
	if at < 0 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: missing @ in SG_ layout %q", line)
	}
	pipe := strings.IndexByte(startWidthOrder, '|')
	if pipe < 0 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: missing | in SG_ layout %q", line)
	}
	start, err := strconv.ParseUint(startWidthOrder[:pipe], 10, 8)
	if err != nil {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: start bit: %w", err)
	}
	width, err := strconv.ParseUint(startWidthOrder[pipe+1:at], 10, 8)
	if err != nil {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: width: %w", err)
	}
	orderSign := startWidthOrder[at+1:]
	if len(orderSign) < 2 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: malformed order/sign %q", startWidthOrder)
	}
	order := dbcgen.LittleEndian
	if orderSign[0] == '0' {
		order = dbcgen.BigEndian
	}
	signedness := dbcgen.Unsigned
	if orderSign[1] == '-' {
		signedness = dbcgen.Signed
	}

	scaleOffset := strings.Trim(fields[1], "()")
	comma := strings.IndexByte(scaleOffset, ',')
	if comma < 0 {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: malformed scale/offset %q", fields[1])
	}
	scale, err := strconv.ParseFloat(scaleOffset[:comma], 64)
	if err != nil {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: scale: %w", err)
	}
	offset, err := strconv.ParseFloat(scaleOffset[comma+1:], 64)
	if err != nil {
		return dbcgen.SignalDescription{}, fmt.Errorf("dbcfile: offset: %w", err)
	}

	return dbcgen.SignalDescription{
		Name:       name,
		StartBit:   uint8(start),
		Width:      uint8(width),
		ByteOrder:  order,
		Signedness: signedness,
		Scale:      scale,
		Offset:     offset,
	}, nil
}

// parseCycleTime parses a `BA_ "GenMsgCycleTime" BO_ <id> <value>;` line.
func parseCycleTime(line string) (id uint32, cycle uint32, err error) {
	fields := strings.Fields(strings.TrimSuffix(line, ";"))
	// fields: BA_ "GenMsgCycleTime" BO_ <id> <value>
	if len(fields) < 5 {
		return 0, 0, fmt.Errorf("dbcfile: malformed BA_ GenMsgCycleTime line %q", line)
	}
	rawID, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("dbcfile: GenMsgCycleTime id: %w", err)
	}
	value, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("dbcfile: GenMsgCycleTime value: %w", err)
	}
	return uint32(rawID), uint32(value), nil
}

// parseVAL parses a `VAL_ <id> <signal> <raw> "<label>" <raw> "<label>" ... ;` line.
func parseVAL(line string) (id uint32, signal string, labels []dbcgen.ValueLabel, err error) {
	rest := strings.TrimSuffix(strings.TrimPrefix(line, "VAL_ "), ";")
	rest = strings.TrimSpace(rest)

	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return 0, "", nil, fmt.Errorf("dbcfile: malformed VAL_ line %q", line)
	}
	rawID, err := strconv.ParseUint(rest[:sp], 10, 32)
	if err != nil {
		return 0, "", nil, fmt.Errorf("dbcfile: VAL_ id: %w", err)
	}
	rest = strings.TrimSpace(rest[sp+1:])

	sp = strings.IndexByte(rest, ' ')
	if sp < 0 {
		return 0, "", nil, fmt.Errorf("dbcfile: malformed VAL_ line %q", line)
	}
	signal = rest[:sp]
	rest = strings.TrimSpace(rest[sp+1:])

	for len(rest) > 0 {
		sp = strings.IndexByte(rest, ' ')
		if sp < 0 {
			break
		}
		raw, err := strconv.ParseInt(rest[:sp], 10, 64)
		if err != nil {
			return 0, "", nil, fmt.Errorf("dbcfile: VAL_ raw value: %w", err)
		}
		rest = strings.TrimSpace(rest[sp+1:])
		if len(rest) == 0 || rest[0] != '"' {
			return 0, "", nil, fmt.Errorf("dbcfile: malformed VAL_ label in %q", line)
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return 0, "", nil, fmt.Errorf("dbcfile: unterminated VAL_ label in %q", line)
		}
		label := rest[1 : 1+end]
		labels = append(labels, dbcgen.ValueLabel{Raw: raw, Label: label})
		rest = strings.TrimSpace(rest[1+end+1:])
	}

	return uint32(rawID), signal, labels, nil
}
