package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// TestIsUniqueViolation はユニーク制約違反の判定を検証する。
func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "一意制約違反", err: &pq.Error{Code: "23505"}, want: true},
		{name: "ラップされた一意制約違反", err: fmt.Errorf("購読の作成に失敗: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "別のpqエラー", err: &pq.Error{Code: "23503"}, want: false},
		{name: "pq以外のエラー", err: errors.New("connection refused"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestNullString は空文字列のNULL変換を検証する。
func TestNullString(t *testing.T) {
	if v := nullString(""); v.Valid {
		t.Error("empty string should produce NULL")
	}
	if v := nullString("ethereum"); !v.Valid || v.String != "ethereum" {
		t.Errorf("nullString(ethereum) = %+v", v)
	}
}

// TestNullInt64 はnilポインタのNULL変換を検証する。
func TestNullInt64(t *testing.T) {
	if v := nullInt64(nil); v.Valid {
		t.Error("nil pointer should produce NULL")
	}
	n := int64(42)
	if v := nullInt64(&n); !v.Valid || v.Int64 != 42 {
		t.Errorf("nullInt64(&42) = %+v", v)
	}
}
