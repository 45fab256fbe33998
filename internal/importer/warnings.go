package importer

import "go.uber.org/zap"

// WarningKind classifies a non-fatal import problem. Warnings are logged
// with the kind in the "warning" field and never change the result.
type WarningKind string

const (
	WarnMaterialIndexClamped    WarningKind = "MaterialIndexClamped"
	WarnSubmaterialIndexClamped WarningKind = "SubmaterialIndexClamped"
	WarnEmptyMeshName           WarningKind = "EmptyMeshName"
	WarnCyclicParent            WarningKind = "CyclicParent"
	WarnParser                  WarningKind = "ParserWarning"
	WarnUVChannelsExhausted     WarningKind = "UVChannelsExhausted"
)

func (b *builder) warn(kind WarningKind, msg string, fields ...zap.Field) {
	b.log.Warn(msg, append([]zap.Field{zap.String("warning", string(kind))}, fields...)...)
}
