package image

import "github.com/AlexStarov/inkshield-GoLang-lib/protocol"

// Target принимает уровни сопел, по одному кадру за вызов
type Target interface {
	Fire(levels protocol.Buffer) error
}
