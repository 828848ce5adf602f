package protocol

import (
	"strconv"
	"strings"
)

// ParseText парсит одну текстовую команду (без завершающего LF).
//
// Формат:
//
//	SET <key> <value>            — value может содержать пробелы
//	SET <key> <value> EX <sec>   — опциональный TTL-суффикс (или TTL <sec>)
//	GET <key>
//	DEL <key>
//	MGET <key1> <key2> ...
//	COMPACT
//	STATS
//
// Хвостовая пара `EX <n>` / `TTL <n>` у SET всегда съедается как TTL,
// даже если клиент имел в виду значение. Значения с таким хвостом —
// только через length-prefixed форму.
func ParseText(line string) Command {
	cmd := Command{Kind: KindUnknown}

	line = strings.TrimRight(line, "\r\n")
	verb, rest := splitWord(line)

	switch strings.ToUpper(verb) {
	case "SET":
		key, value := splitWord(rest)
		if key == "" {
			return cmd
		}
		cmd.Kind = KindSet
		cmd.Key = key
		cmd.Value, cmd.TTLSeconds = cutTTLSuffix(value)
		cmd.Valid = true

	case "GET":
		key, _ := splitWord(rest)
		if key == "" {
			return cmd
		}
		cmd.Kind = KindGet
		cmd.Key = key
		cmd.Valid = true

	case "DEL":
		key, _ := splitWord(rest)
		if key == "" {
			return cmd
		}
		cmd.Kind = KindDel
		cmd.Key = key
		cmd.Valid = true

	case "MGET":
		keys := strings.Fields(rest)
		if len(keys) == 0 {
			return cmd
		}
		cmd.Kind = KindMGet
		cmd.Keys = keys
		cmd.Valid = true

	case "COMPACT":
		cmd.Kind = KindCompact
		cmd.Valid = true

	case "STATS":
		cmd.Kind = KindStats
		cmd.Valid = true
	}

	return cmd
}

// splitWord отрезает первое слово, возвращает (слово, остаток без
// ведущих пробелов).
func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " ")
}

// cutTTLSuffix отделяет хвостовой `EX <n>` / `TTL <n>` от значения.
// Возвращает (значение, ttl в секундах); ttl = 0 если суффикса нет.
func cutTTLSuffix(value string) (string, int64) {
	trimmed := strings.TrimRight(value, " ")

	i := strings.LastIndexByte(trimmed, ' ')
	if i < 0 {
		return value, 0
	}
	n, err := strconv.ParseInt(trimmed[i+1:], 10, 64)
	if err != nil || n <= 0 {
		return value, 0
	}

	head := strings.TrimRight(trimmed[:i], " ")
	j := strings.LastIndexByte(head, ' ')
	kw := head[j+1:]
	if kw != "EX" && kw != "TTL" {
		return value, 0
	}

	if j < 0 {
		// значение целиком было суффиксом: SET k EX 5
		return "", n
	}
	return strings.TrimRight(head[:j], " "), n
}
