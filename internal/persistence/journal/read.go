package journal

import (
	"bufio"
	"io"
	"log"

	"jkvs/internal/protocol"
)

const maxScanSize = 16 * 1024 * 1024 // 16MB макс размер строки

// ReadResult — результат восстановления из журнала.
type ReadResult struct {
	ValidRecords   int // число применённых записей
	SkippedRecords int // число строк, не распарсившихся в SET/DEL
}

// Replay читает журнал с начала и вызывает rf для каждой валидной
// записи SET/DEL. Строки, не являющиеся командами, пропускаются с
// warning-ом — операция продолжается. После чтения позиция файла
// возвращается в конец для дозаписи.
func (j *Journal) Replay(rf func(cmd protocol.Command)) (*ReadResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	result := &ReadResult{}
	scanner := bufio.NewScanner(j.file)
	scanner.Buffer(make([]byte, 64*1024), maxScanSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		cmd := protocol.ParseText(line)
		if !cmd.Valid || (cmd.Kind != protocol.KindSet && cmd.Kind != protocol.KindDel) {
			log.Printf("journal: skipping malformed record at line %d", lineNo)
			result.SkippedRecords++
			continue
		}

		result.ValidRecords++
		rf(cmd)
	}

	if err := scanner.Err(); err != nil {
		return result, err
	}

	if _, err := j.file.Seek(0, io.SeekEnd); err != nil {
		return result, err
	}

	return result, nil
}
