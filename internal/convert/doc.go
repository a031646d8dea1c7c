// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// Word 97-2003 File Information Block offsets.
const (
	fibIdent      = 0x0000
	fibFlags      = 0x000A
	fibCcpText    = 0x004C
	fibFcClx      = 0x01A2
	fibLcbClx     = 0x01A6
	fibMinSize    = 0x01AA
	wordIdent     = 0xA5EC
	flagEncrypted = 0x0100
	flagTable1    = 0x0200
	fcCompressed  = 0x40000000
)

// extractDOC reads the main document text of a legacy Word file from its
// WordDocument and table streams. Legacy files carry no usable font sizes
// here, so the lines have none.
func extractDOC(ctx context.Context, path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfb, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	streams := map[string][]byte{}
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			data, err := io.ReadAll(entry)
			if err != nil {
				return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
			}
			streams[entry.Name] = data
		}
	}

	wordDoc, ok := streams["WordDocument"]
	if !ok {
		return nil, errors.New("WordDocument stream not found")
	}
	if len(wordDoc) < fibMinSize {
		return nil, errors.New("WordDocument stream too short")
	}
	table := streams["0Table"]
	if binary.LittleEndian.Uint16(wordDoc[fibFlags:])&flagTable1 != 0 {
		table = streams["1Table"]
	}

	text, err := decodeWordText(wordDoc, table)
	if err != nil {
		return nil, err
	}
	var lines []Line
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, Line{Text: l})
	}
	return lines, nil
}

// decodeWordText walks the piece table of the main document and decodes
// each piece as Windows-1252 or UTF-16LE.
func decodeWordText(wordDoc, table []byte) (string, error) {
	if binary.LittleEndian.Uint16(wordDoc[fibIdent:]) != wordIdent {
		return "", errors.New("not a Word 97-2003 document")
	}
	flags := binary.LittleEndian.Uint16(wordDoc[fibFlags:])
	if flags&flagEncrypted != 0 {
		return "", errors.New("document is encrypted")
	}

	ccpText := binary.LittleEndian.Uint32(wordDoc[fibCcpText:])
	fcClx := binary.LittleEndian.Uint32(wordDoc[fibFcClx:])
	lcbClx := binary.LittleEndian.Uint32(wordDoc[fibLcbClx:])
	if lcbClx == 0 || uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) {
		return "", errors.New("piece table out of range")
	}

	plc, err := pieceTable(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	n := (len(plc) - 4) / 12
	var sb strings.Builder
	for i := 0; i < n; i++ {
		cpStart := binary.LittleEndian.Uint32(plc[i*4:])
		cpEnd := binary.LittleEndian.Uint32(plc[(i+1)*4:])
		if cpStart >= ccpText {
			break
		}
		cpEnd = min(cpEnd, ccpText)
		if cpEnd <= cpStart {
			continue
		}

		pcd := plc[(n+1)*4+i*8:]
		fc := binary.LittleEndian.Uint32(pcd[2:])
		count := int(cpEnd - cpStart)

		var piece string
		if fc&fcCompressed != 0 {
			off := int(fc&^fcCompressed) / 2
			if off+count > len(wordDoc) {
				return "", errors.New("text piece out of range")
			}
			piece, err = charmap.Windows1252.NewDecoder().String(string(wordDoc[off : off+count]))
		} else {
			off := int(fc)
			if off+2*count > len(wordDoc) {
				return "", errors.New("text piece out of range")
			}
			piece, err = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).
				NewDecoder().String(string(wordDoc[off : off+2*count]))
		}
		if err != nil {
			return "", fmt.Errorf("decode text piece: %w", err)
		}
		sb.WriteString(piece)
	}
	return cleanWordText(sb.String()), nil
}

// pieceTable skips the property runs of a Clx and returns its PlcPcd.
func pieceTable(clx []byte) ([]byte, error) {
	for i := 0; i < len(clx); {
		switch clx[i] {
		case 0x01:
			if i+3 > len(clx) {
				return nil, errors.New("truncated property run")
			}
			i += 3 + int(binary.LittleEndian.Uint16(clx[i+1:]))
		case 0x02:
			if i+5 > len(clx) {
				return nil, errors.New("truncated piece table")
			}
			lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
			if i+5+lcb > len(clx) || lcb < 4 || (lcb-4)%12 != 0 {
				return nil, errors.New("malformed piece table")
			}
			return clx[i+5 : i+5+lcb], nil
		default:
			return nil, fmt.Errorf("unexpected clx entry 0x%02x", clx[i])
		}
	}
	return nil, errors.New("piece table not found")
}

// cleanWordText maps Word control characters to text and drops field
// instructions, keeping field results.
func cleanWordText(s string) string {
	var sb strings.Builder
	var fields []bool // open fields; true while inside the instruction part
	skipping := func() bool {
		for _, instr := range fields {
			if instr {
				return true
			}
		}
		return false
	}
	for _, r := range s {
		switch r {
		case 0x13:
			fields = append(fields, true)
			continue
		case 0x14:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if skipping() {
			continue
		}
		switch r {
		case '\r', 0x0B, 0x0C:
			sb.WriteByte('\n')
		case 0x07, '\t':
			sb.WriteByte(' ')
		default:
			if r >= 0x20 {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
