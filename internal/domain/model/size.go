package model

import "strings"

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// 入力文字列をサイズに変換（大文字小文字は区別しない）
func ParseSize(s string) (Size, bool) {
	v := Size(strings.ToUpper(strings.TrimSpace(s)))
	for _, sz := range sizes {
		if sz == v {
			return sz, true
		}
	}
	return "", false
}
