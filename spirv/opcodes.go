package spirv

// Magic is the SPIR-V magic number in host word order.
const Magic uint32 = 0x07230203

// Version1_3 is the first version with the StorageBuffer storage class in core.
const Version1_3 uint32 = 0x00010300

// Op is a SPIR-V opcode.
type Op uint16

const (
	OpNop                  Op = 0
	OpName                 Op = 5
	OpMemberName           Op = 6
	OpExtension            Op = 10
	OpMemoryModel          Op = 14
	OpCapability           Op = 17
	OpTypeVoid             Op = 19
	OpTypeInt              Op = 21
	OpTypeVector           Op = 23
	OpTypeRuntimeArray     Op = 29
	OpTypeStruct           Op = 30
	OpTypePointer          Op = 32
	OpTypeFunction         Op = 33
	OpConstant             Op = 43
	OpFunction             Op = 54
	OpFunctionParameter    Op = 55
	OpFunctionEnd          Op = 56
	OpVariable             Op = 59
	OpLoad                 Op = 61
	OpStore                Op = 62
	OpAccessChain          Op = 65
	OpDecorate             Op = 71
	OpMemberDecorate       Op = 72
	OpCompositeConstruct   Op = 80
	OpCompositeExtract     Op = 81
	OpBitcast              Op = 124
	OpIAdd                 Op = 128
	OpShiftRightArithmetic Op = 195
	OpLabel                Op = 248
	OpReturn               Op = 253
	OpReturnValue          Op = 254
)

// StorageClass is a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassPrivate       StorageClass = 6
	StorageClassFunction      StorageClass = 7
	StorageClassStorageBuffer StorageClass = 12
)

// Decoration is a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock             Decoration = 2
	DecorationArrayStride       Decoration = 6
	DecorationBinding           Decoration = 33
	DecorationDescriptorSet     Decoration = 34
	DecorationOffset            Decoration = 35
	DecorationLinkageAttributes Decoration = 41
)

// Capability is a SPIR-V capability.
type Capability uint32

const (
	CapabilityShader                 Capability = 1
	CapabilityLinkage                Capability = 5
	CapabilityInt64                  Capability = 11
	CapabilityInt16                  Capability = 22
	CapabilityInt8                   Capability = 39
	CapabilityRuntimeDescriptorArray Capability = 5302
)

const (
	addressingModelLogical uint32 = 0
	memoryModelGLSL450     uint32 = 1
	linkageTypeExport      uint32 = 0
	functionControlNone    uint32 = 0
)

const extDescriptorIndexing = "SPV_EXT_descriptor_indexing"

// operand kinds used by opInfo.operands:
//
//	i  id           l  literal word   s  literal string
//	c  storage class d decoration     k  capability
//
// A trailing '+' repeats the previous kind for the rest of the instruction.
type opInfo struct {
	name     string
	operands string
	typed    bool // first operand is a result type id
	result   bool // next operand is a result id
}

var opInfos = map[Op]opInfo{
	OpNop:                  {name: "OpNop"},
	OpName:                 {name: "OpName", operands: "is"},
	OpMemberName:           {name: "OpMemberName", operands: "ils"},
	OpExtension:            {name: "OpExtension", operands: "s"},
	OpMemoryModel:          {name: "OpMemoryModel", operands: "ll"},
	OpCapability:           {name: "OpCapability", operands: "k"},
	OpTypeVoid:             {name: "OpTypeVoid", result: true},
	OpTypeInt:              {name: "OpTypeInt", result: true, operands: "ll"},
	OpTypeVector:           {name: "OpTypeVector", result: true, operands: "il"},
	OpTypeRuntimeArray:     {name: "OpTypeRuntimeArray", result: true, operands: "i"},
	OpTypeStruct:           {name: "OpTypeStruct", result: true, operands: "i+"},
	OpTypePointer:          {name: "OpTypePointer", result: true, operands: "ci"},
	OpTypeFunction:         {name: "OpTypeFunction", result: true, operands: "i+"},
	OpConstant:             {name: "OpConstant", typed: true, result: true, operands: "l+"},
	OpFunction:             {name: "OpFunction", typed: true, result: true, operands: "li"},
	OpFunctionParameter:    {name: "OpFunctionParameter", typed: true, result: true},
	OpFunctionEnd:          {name: "OpFunctionEnd"},
	OpVariable:             {name: "OpVariable", typed: true, result: true, operands: "ci"},
	OpLoad:                 {name: "OpLoad", typed: true, result: true, operands: "il+"},
	OpStore:                {name: "OpStore", operands: "iil+"},
	OpAccessChain:          {name: "OpAccessChain", typed: true, result: true, operands: "i+"},
	OpDecorate:             {name: "OpDecorate", operands: "idl+"},
	OpMemberDecorate:       {name: "OpMemberDecorate", operands: "ildl+"},
	OpCompositeConstruct:   {name: "OpCompositeConstruct", typed: true, result: true, operands: "i+"},
	OpCompositeExtract:     {name: "OpCompositeExtract", typed: true, result: true, operands: "il+"},
	OpBitcast:              {name: "OpBitcast", typed: true, result: true, operands: "i"},
	OpIAdd:                 {name: "OpIAdd", typed: true, result: true, operands: "ii"},
	OpShiftRightArithmetic: {name: "OpShiftRightArithmetic", typed: true, result: true, operands: "ii"},
	OpLabel:                {name: "OpLabel", result: true},
	OpReturn:               {name: "OpReturn"},
	OpReturnValue:          {name: "OpReturnValue", operands: "i"},
}

// String returns the opcode name.
func (op Op) String() string {
	if info, ok := opInfos[op]; ok {
		return info.name
	}
	return "Op(" + itoa(uint32(op)) + ")"
}

func (c StorageClass) String() string {
	switch c {
	case StorageClassPrivate:
		return "Private"
	case StorageClassFunction:
		return "Function"
	case StorageClassStorageBuffer:
		return "StorageBuffer"
	default:
		return itoa(uint32(c))
	}
}

func (d Decoration) String() string {
	switch d {
	case DecorationBlock:
		return "Block"
	case DecorationArrayStride:
		return "ArrayStride"
	case DecorationBinding:
		return "Binding"
	case DecorationDescriptorSet:
		return "DescriptorSet"
	case DecorationOffset:
		return "Offset"
	case DecorationLinkageAttributes:
		return "LinkageAttributes"
	default:
		return itoa(uint32(d))
	}
}

func (c Capability) String() string {
	switch c {
	case CapabilityShader:
		return "Shader"
	case CapabilityLinkage:
		return "Linkage"
	case CapabilityInt64:
		return "Int64"
	case CapabilityInt16:
		return "Int16"
	case CapabilityInt8:
		return "Int8"
	case CapabilityRuntimeDescriptorArray:
		return "RuntimeDescriptorArray"
	default:
		return itoa(uint32(c))
	}
}
