package trace

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/klauspost/compress/gzip"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
)

// The file format lists calls and steps with their accesses inline. Decoding
// replays it through a Recorder, so counters and refs are recomputed rather
// than trusted.

type fileTrace struct {
	Calls []fileCall `json:"calls"`
	Steps []fileStep `json:"steps"`
}

type fileCall struct {
	ID       uint64        `json:"id"`
	Code     hexutil.Bytes `json:"code"`
	IsCreate bool          `json:"isCreate,omitempty"`
}

type fileStep struct {
	Call              uint64       `json:"call"`
	Opcode            string       `json:"op"`
	ProgramCounter    uint64       `json:"pc"`
	StackPointer      uint64       `json:"sp"`
	GasLeft           uint64       `json:"gas"`
	GasCost           uint64       `json:"gasCost"`
	MemorySize        uint64       `json:"memSize,omitempty"`
	StateWriteCounter uint64       `json:"stateWriteCounter,omitempty"`
	Accesses          []fileAccess `json:"accesses,omitempty"`
}

type fileAccess struct {
	Target    string          `json:"target"`
	Write     bool            `json:"write,omitempty"`
	Address   uint64          `json:"address,omitempty"`
	Account   *common.Address `json:"account,omitempty"`
	Key       string          `json:"key,omitempty"`
	Value     string          `json:"value,omitempty"`
	ValuePrev string          `json:"valuePrev,omitempty"`
}

var gzipMagic = []byte{0x1f, 0x8b}

// Encode writes t as JSON, gzip compressed when compress is set.
func Encode(w io.Writer, t *Trace, compress bool) error {
	file, err := toFile(t)
	if err != nil {
		return err
	}
	if !compress {
		return errors.Wrap(json.NewEncoder(w).Encode(file), "encode trace")
	}
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(file); err != nil {
		return errors.Wrap(err, "encode trace")
	}
	return errors.Wrap(zw.Close(), "compress trace")
}

// Decode reads a trace written by Encode. Compression is detected from the
// gzip header.
func Decode(r io.Reader, log logger.Logger) (*Trace, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(len(gzipMagic)); err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer zr.Close()
		src = zr
	}

	var file fileTrace
	if err := json.NewDecoder(src).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode trace")
	}
	return fromFile(&file, log)
}

// ReadFile decodes the trace stored at path.
func ReadFile(path string, log logger.Logger) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open trace %s", path)
	}
	defer f.Close()
	return Decode(f, log)
}

// WriteFile encodes t to path, gzip compressed when compress is set.
func WriteFile(path string, t *Trace, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create trace %s", path)
	}
	if err := Encode(f, t, compress); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close trace %s", path)
}

func toFile(t *Trace) (*fileTrace, error) {
	codes := make(map[common.Hash][]byte, len(t.Bytecodes))
	for _, code := range t.Bytecodes {
		codes[code.Hash] = code.Code
	}

	file := &fileTrace{}
	for _, c := range t.Calls {
		code, ok := codes[c.CodeHash]
		if !ok {
			return nil, errors.Newf("call %d executes unknown code %s", c.ID, c.CodeHash.Hex())
		}
		file.Calls = append(file.Calls, fileCall{ID: c.ID, Code: code, IsCreate: c.IsCreate})
	}

	for i, s := range t.Steps {
		fs := fileStep{
			Call:              s.CallID,
			Opcode:            s.Opcode.String(),
			ProgramCounter:    s.ProgramCounter,
			StackPointer:      s.StackPointer,
			GasLeft:           s.GasLeft,
			GasCost:           s.GasCost,
			MemorySize:        s.MemorySize,
			StateWriteCounter: s.StateWriteCounter,
		}
		for _, ref := range s.Refs {
			access, err := toFileAccess(t.Container, ref)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d", i)
			}
			fs.Accesses = append(fs.Accesses, access)
		}
		file.Steps = append(file.Steps, fs)
	}
	return file, nil
}

func toFileAccess(container *operation.Container, ref operation.OperationRef) (fileAccess, error) {
	switch ref.Target {
	case operation.Stack:
		op, ok := container.Stack(ref)
		if ok {
			value := op.Op().Value()
			return fileAccess{
				Target:  ref.Target.String(),
				Write:   op.RW().IsWrite(),
				Address: uint64(op.Op().Address()),
				Value:   value.Hex(),
			}, nil
		}
	case operation.Memory:
		op, ok := container.Memory(ref)
		if ok {
			value := uint256.NewInt(uint64(op.Op().Value()))
			return fileAccess{
				Target:  ref.Target.String(),
				Write:   op.RW().IsWrite(),
				Address: uint64(op.Op().Address()),
				Value:   value.Hex(),
			}, nil
		}
	case operation.Storage:
		op, ok := container.Storage(ref)
		if ok {
			account := op.Op().Address()
			key, value, prev := op.Op().Key(), op.Op().Value(), op.Op().ValuePrev()
			return fileAccess{
				Target:    ref.Target.String(),
				Write:     op.RW().IsWrite(),
				Account:   &account,
				Key:       key.Hex(),
				Value:     value.Hex(),
				ValuePrev: prev.Hex(),
			}, nil
		}
	}
	return fileAccess{}, errors.Newf("dangling operation ref %s", ref)
}

func fromFile(file *fileTrace, log logger.Logger) (*Trace, error) {
	recorder := NewRecorder(log)
	codes := make(map[uint64]fileCall, len(file.Calls))
	for _, c := range file.Calls {
		codes[c.ID] = c
	}

	entered := make(map[uint64]uint64)
	for i, fs := range file.Steps {
		if _, ok := entered[fs.Call]; !ok {
			c, ok := codes[fs.Call]
			if !ok {
				return nil, errors.Newf("step %d: unknown call %d", i, fs.Call)
			}
			entered[fs.Call] = recorder.EnterCall(c.Code, c.IsCreate)
		}
		if entered[fs.Call] != recorder.current {
			return nil, errors.Newf("step %d: returning to call %d is not supported", i, fs.Call)
		}

		op := vm.StringToOp(fs.Opcode)
		if op.String() != fs.Opcode {
			return nil, errors.Newf("step %d: unknown opcode %q", i, fs.Opcode)
		}
		accesses := make([]Access, 0, len(fs.Accesses))
		for j, fa := range fs.Accesses {
			access, err := fromFileAccess(fa)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d access %d", i, j)
			}
			accesses = append(accesses, access)
		}
		info := StepInfo{
			Opcode:            op,
			ProgramCounter:    fs.ProgramCounter,
			StackPointer:      fs.StackPointer,
			GasLeft:           fs.GasLeft,
			GasCost:           fs.GasCost,
			MemorySize:        fs.MemorySize,
			StateWriteCounter: fs.StateWriteCounter,
		}
		if _, err := recorder.Exec(info, accesses...); err != nil {
			return nil, err
		}
	}
	return recorder.Finish(), nil
}

func fromFileAccess(fa fileAccess) (Access, error) {
	rw := operation.Read
	if fa.Write {
		rw = operation.Write
	}
	value, err := parseWord(fa.Value)
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}
	switch fa.Target {
	case operation.Stack.String():
		address, err := operation.NewStackAddress(fa.Address)
		if err != nil {
			return nil, err
		}
		return operation.NewStackOp(rw, address, value), nil
	case operation.Memory.String():
		if !value.IsUint64() || value.Uint64() > 0xFF {
			return nil, errors.Newf("memory value %s is not a byte", value.Hex())
		}
		return operation.NewMemoryOp(rw, operation.MemoryAddress(fa.Address), byte(value.Uint64())), nil
	case operation.Storage.String():
		if fa.Account == nil {
			return nil, errors.New("storage access without account")
		}
		key, err := parseWord(fa.Key)
		if err != nil {
			return nil, errors.Wrap(err, "key")
		}
		prev, err := parseWord(fa.ValuePrev)
		if err != nil {
			return nil, errors.Wrap(err, "previous value")
		}
		return operation.NewStorageOp(rw, *fa.Account, key, value, prev), nil
	default:
		return nil, errors.Newf("unknown target %q", fa.Target)
	}
}

// parseWord reads a 0x prefixed hex word. Leading zeros are accepted.
func parseWord(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	digits, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok {
		return nil, errors.Newf("word %q lacks the 0x prefix", s)
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	v, err := uint256.FromHex("0x" + digits)
	if err != nil {
		return nil, errors.Wrapf(err, "word %q", s)
	}
	return v, nil
}
