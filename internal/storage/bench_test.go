package storage

import (
	"strconv"
	"testing"
)

// --- Базовые операции ---

func BenchmarkSet(b *testing.B) {
	s := New(nil)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set("key"+strconv.Itoa(i), "value", 0)
	}
}

func BenchmarkSetWithTTL(b *testing.B) {
	s := New(nil)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set("key"+strconv.Itoa(i), "value", 300)
	}
}

func BenchmarkGet(b *testing.B) {
	s := New(nil)
	defer s.Close()

	for i := 0; i < 10000; i++ {
		s.Set("key"+strconv.Itoa(i), "value"+strconv.Itoa(i), 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get("key" + strconv.Itoa(i%10000))
	}
}

func BenchmarkGetMiss(b *testing.B) {
	s := New(nil)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get("nonexistent" + strconv.Itoa(i))
	}
}

func BenchmarkMGet(b *testing.B) {
	s := New(nil)
	defer s.Close()

	keys := make([]string, 100)
	for i := range keys {
		keys[i] = "key" + strconv.Itoa(i)
		s.Set(keys[i], "value", 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.MGet(keys)
	}
}

// --- Параллельные операции ---

func BenchmarkSetParallel(b *testing.B) {
	s := New(nil)
	defer s.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Set("key"+strconv.Itoa(i), "value", 0)
			i++
		}
	})
}

func BenchmarkGetParallel(b *testing.B) {
	s := New(nil)
	defer s.Close()

	for i := 0; i < 10000; i++ {
		s.Set("key"+strconv.Itoa(i), "value", 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Get("key" + strconv.Itoa(i%10000))
			i++
		}
	})
}
