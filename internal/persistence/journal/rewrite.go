package journal

import (
	"bufio"
	"log"
	"os"
)

// Rewrite компактит журнал с буфером докатки (как Redis AOF rewrite).
//
// Алгоритм:
//  1. Включаем rewriting flag → append начинает дублировать записи в rewriteBuf
//  2. Через callback snapshot пишем живые ключи в <path>.tmp
//  3. Первый дренаж rewriteBuf в temp-файл; дублирование остаётся
//     включённым до конца swap-а
//  4. Под мьютексом журнала: atomic rename temp → live, переоткрытие
//  5. Всё ещё под мьютексом: финальный дренаж rewriteBuf уже в новый
//     файл, только потом дублирование выключается — окна потери нет
//
// Запись, успевшая между дренажами, может попасть в файл дважды;
// replay идемпотентен, повтор записи безвреден. При ошибке rename
// старый файл остаётся на месте и переоткрывается: в любой момент
// цел либо старый журнал, либо новый.
func (j *Journal) Rewrite(snapshot func(emit func(key, value string, ttlSeconds int64))) error {
	tmpPath := j.path + ".tmp"

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	writer := bufio.NewWriterSize(tmpFile, writeBufSize)
	written := 0

	// === Шаг 1: включаем буфер докатки ===
	j.rewriteMu.Lock()
	j.rewriteBuf = j.rewriteBuf[:0]
	j.rewriteMu.Unlock()
	j.rewriting.Store(true)

	// Страховка на ранних выходах: дублирование выключено, буфер пуст
	defer func() {
		j.rewriteMu.Lock()
		j.rewriteBuf = j.rewriteBuf[:0]
		j.rewriting.Store(false)
		j.rewriteMu.Unlock()
	}()

	// === Шаг 2: snapshot — по SET-записи на живой ключ ===
	snapshot(func(key, value string, ttlSeconds int64) {
		writer.Write(encodeSet(key, value, ttlSeconds))
		written++
	})

	// === Шаг 3: первый дренаж докатки в temp-файл ===
	j.rewriteMu.Lock()
	buffered := make([][]byte, len(j.rewriteBuf))
	copy(buffered, j.rewriteBuf)
	j.rewriteBuf = j.rewriteBuf[:0]
	j.rewriteMu.Unlock()

	for _, rec := range buffered {
		writer.Write(rec)
		written++
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	tmpFile.Close()

	// === Шаг 4: atomic rename под мьютексом журнала ===
	j.mu.Lock()
	defer j.mu.Unlock()

	j.writer.Flush()
	j.file.Sync()
	j.file.Close()

	if err := os.Rename(tmpPath, j.path); err != nil {
		// rename не прошёл — старый файл цел, переоткрываем его
		os.Remove(tmpPath)
		f, oerr := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
		if oerr != nil {
			return oerr
		}
		j.file = f
		j.writer = bufio.NewWriterSize(f, writeBufSize)
		return err
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	j.file = f
	j.writer = bufio.NewWriterSize(f, writeBufSize)

	// === Шаг 5: финальный дренаж уже в новый файл ===
	// Записи, пришедшие после первого дренажа и до взятия j.mu, лежат
	// в rewriteBuf и дописываются здесь. Писатели, пришедшие позже,
	// ждут на j.mu и увидят выключенный флаг только после этого блока.
	j.rewriteMu.Lock()
	late := len(j.rewriteBuf)
	for _, rec := range j.rewriteBuf {
		j.writer.Write(rec)
		written++
	}
	j.rewriteBuf = j.rewriteBuf[:0]
	j.rewriting.Store(false)
	j.rewriteMu.Unlock()

	log.Printf("journal rewrite: %d records (incl %d buffered during rewrite)", written, len(buffered)+late)
	return nil
}
