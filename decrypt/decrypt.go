package decrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

const delimiter = "|"

// Decrypter opens quiz blobs with a fixed AES key and IV in CBC mode.
// Failures never surface as errors; they are counted.
type Decrypter struct {
	block    cipher.Block
	iv       []byte
	failures atomic.Int64
}

// New parses a hex encoded AES key (16, 24 or 32 bytes) and a 16 byte IV.
func New(keyHex, ivHex string) (*Decrypter, error) {
	key, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	iv, err := hex.DecodeString(strings.TrimSpace(ivHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode iv: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", block.BlockSize(), len(iv))
	}
	return &Decrypter{block: block, iv: iv}, nil
}

func (d *Decrypter) Failures() int {
	return int(d.failures.Load())
}

// Open decrypts a blob and splits the plaintext at the first delimiter into
// the id and the payload. Blobs stored as base64 text are accepted too.
func (d *Decrypter) Open(blob []byte) (id, payload string, ok bool) {
	// raw ciphertext is practically never valid base64, so text is tried first
	if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(blob))); err == nil {
		if id, payload, ok := d.open(decoded); ok {
			return id, payload, true
		}
	}
	if id, payload, ok := d.open(blob); ok {
		return id, payload, true
	}

	d.failures.Add(1)
	return "", "", false
}

func (d *Decrypter) open(blob []byte) (id, payload string, ok bool) {
	plain, ok := d.decrypt(blob)
	if !ok {
		return "", "", false
	}
	id, payload, found := strings.Cut(string(plain), delimiter)
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(id), payload, true
}

func (d *Decrypter) decrypt(blob []byte) ([]byte, bool) {
	bs := d.block.BlockSize()
	if len(blob) == 0 || len(blob)%bs != 0 {
		return nil, false
	}

	plain := make([]byte, len(blob))
	cipher.NewCBCDecrypter(d.block, d.iv).CryptBlocks(plain, blob)
	return unpad(plain, bs)
}

func unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, false
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, false
	}
	return b[:len(b)-n], true
}

// Seal is the inverse of Open. It is used to build fixtures.
func (d *Decrypter) Seal(id, payload string) []byte {
	bs := d.block.BlockSize()
	plain := []byte(id + delimiter + payload)
	n := bs - len(plain)%bs
	plain = append(plain, bytes.Repeat([]byte{byte(n)}, n)...)

	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(d.block, d.iv).CryptBlocks(out, plain)
	return out
}

// ParseAnswer reads "<flag>=<letter>) <text>". A flag of 1 or true marks the
// correct answer.
func ParseAnswer(payload string) (correct bool, letter, text string, ok bool) {
	flag, rest, found := strings.Cut(payload, "=")
	if !found {
		return false, "", "", false
	}
	letter, text, found = strings.Cut(rest, ")")
	if !found {
		return false, "", "", false
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return false, "", "", false
	}

	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "1", "true":
		correct = true
	case "0", "false", "":
	default:
		return false, "", "", false
	}
	return correct, letter, strings.TrimSpace(text), true
}

type questionKey struct {
	exercise int64
	id       string
}

// Rows decrypts encrypted quiz rows into plaintext rows: one row per answer,
// or a single answerless row for questions without answers. Rows that fail
// to decrypt or parse are skipped and counted.
func (d *Decrypter) Rows(enc []*model.EncryptedQuizRow) []*model.QuizRow {
	type question struct {
		row  *model.EncryptedQuizRow
		id   string
		text string
	}

	var (
		order     []questionKey
		questions = make(map[questionKey]*question)
		answers   = make(map[questionKey][]*model.QuizRow)
	)

	for _, e := range enc {
		if e.Kind != model.BlobQuestion {
			continue
		}
		id, text, ok := d.Open(e.Blob)
		if !ok {
			continue
		}
		key := questionKey{e.ExerciseId, id}
		if _, ok := questions[key]; !ok {
			order = append(order, key)
		}
		questions[key] = &question{row: e, id: id, text: strings.TrimSpace(text)}
	}

	for _, e := range enc {
		if e.Kind != model.BlobAnswer {
			continue
		}
		id, payload, ok := d.Open(e.Blob)
		if !ok {
			continue
		}
		correct, letter, text, ok := ParseAnswer(payload)
		if !ok {
			d.failures.Add(1)
			continue
		}
		key := questionKey{e.ExerciseId, id}
		answers[key] = append(answers[key], &model.QuizRow{
			AnswerNumber: e.Number,
			AnswerLetter: letter,
			Answer:       text,
			Correct:      correct,
		})
	}

	var rows []*model.QuizRow
	for _, key := range order {
		q := questions[key]
		base := model.QuizRow{
			IssueId:    q.row.IssueId,
			Chapter:    q.row.Chapter,
			ExerciseId: q.row.ExerciseId,
			QuestionId: fmt.Sprintf("%d:%s", key.exercise, key.id),
			Question:   q.text,
			Custom:     q.row.Custom,
		}

		as := answers[key]
		if len(as) == 0 {
			r := base
			rows = append(rows, &r)
			continue
		}
		for _, a := range as {
			r := base
			r.AnswerNumber, r.AnswerLetter, r.Answer, r.Correct = a.AnswerNumber, a.AnswerLetter, a.Answer, a.Correct
			rows = append(rows, &r)
		}
	}
	return rows
}
