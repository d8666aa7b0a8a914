package handler

import (
	"encoding/json"
	"fmt"
)

// stringList は単一のスカラーまたは配列のどちらで指定されてもよい
// 文字列ID群のリクエストフィールド。
type stringList []string

// UnmarshalJSON はスカラー・配列の両形式を受け付ける。
func (l *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = stringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("文字列または文字列配列が必要です: %w", err)
	}
	*l = stringList(many)
	return nil
}

// int64List は単一のスカラーまたは配列のどちらで指定されてもよい
// 数値ID群のリクエストフィールド。
type int64List []int64

// UnmarshalJSON はスカラー・配列の両形式を受け付ける。
func (l *int64List) UnmarshalJSON(data []byte) error {
	var single int64
	if err := json.Unmarshal(data, &single); err == nil {
		*l = int64List{single}
		return nil
	}

	var many []int64
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("数値または数値配列が必要です: %w", err)
	}
	*l = int64List(many)
	return nil
}
