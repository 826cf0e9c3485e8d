package interp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/config"
	"github.com/sarchlab/vsax86/interp"
	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/valueset"
)

type stubLoader struct {
	funcs   map[ir.Addr]*ir.Function
	symbols map[ir.Addr]string
	entry   ir.Addr
}

func (s *stubLoader) Function(entry ir.Addr) (*ir.Function, bool) {
	fn, ok := s.funcs[entry]
	return fn, ok
}
func (s *stubLoader) SymbolName(addr ir.Addr) (string, bool) {
	name, ok := s.symbols[addr]
	return name, ok
}
func (s *stubLoader) ReadByte(addr int64) (byte, bool) { return 0, false }
func (s *stubLoader) EntryPoint() ir.Addr               { return s.entry }

var _ = Describe("Interpreter", func() {
	var loader *stubLoader

	BeforeEach(func() {
		loader = &stubLoader{funcs: map[ir.Addr]*ir.Function{}, symbols: map[ir.Addr]string{}}
	})

	Context("an intraprocedural straight-line function", func() {
		It("computes the exact constant result", func() {
			instrs := []ir.Instr{
				{Addr: 0x100, Stmt: ir.Move{Dst: ir.Temp{Name: "EBX", Width: 4}, Src: ir.Const{Value: 10, Width: 4}}},
				{Addr: 0x104, Stmt: ir.Move{Dst: ir.Temp{Name: "EBX", Width: 4}, Src: ir.Binop{
					Op: ir.Mul, Left: ir.Temp{Name: "EBX", Width: 4}, Right: ir.Const{Value: 4, Width: 4},
				}}},
				{Addr: 0x108, Stmt: ir.Return{}},
			}
			fn := ir.BuildFunction(0x100, instrs)
			loader.funcs[0x100] = fn
			loader.entry = 0x100

			it := interp.NewBuilder().WithLoader(loader).Build()
			final := it.Run(0x100, 0x7000, 1, 0x8000, 0)

			reg, _ := absstate.LookupRegister("EBX")
			v := final.Read(absstate.RegisterRegionID, reg.AddrSI(), loader, nil)
			si, ok := v.Lookup(valueset.GlobalRegion)
			Expect(ok).To(BeTrue())
			val, ok := si.ConstValue()
			Expect(ok).To(BeTrue())
			Expect(val).To(Equal(int64(40)))
		})
	})

	Context("with the intraproc config flag set", func() {
		It("treats calls as opaque rather than recursing into the callee", func() {
			instrs := []ir.Instr{
				{Addr: 0x200, Stmt: ir.Call{TargetIsDirect: true, DirectAddr: 0x300, Result: "EAX"}},
				{Addr: 0x204, Stmt: ir.Return{}},
			}
			fn := ir.BuildFunction(0x200, instrs)
			loader.funcs[0x200] = fn
			loader.entry = 0x200

			cfg := config.NewBuilder().WithIntraproc(true).Build()
			it := interp.NewBuilder().WithLoader(loader).WithConfig(cfg).Build()
			final := it.Run(0x200, 0x7000, 1, 0x8000, 0)

			reg, _ := absstate.LookupRegister("EAX")
			v := final.Read(absstate.RegisterRegionID, reg.AddrSI(), loader, nil)
			Expect(v.IsTop()).To(BeTrue())
		})
	})

	Context("against a mocked loader", func() {
		It("resolves the entry function through the mock's expectations", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()

			instrs := []ir.Instr{
				{Addr: 0x500, Stmt: ir.Move{Dst: ir.Temp{Name: "ECX", Width: 4}, Src: ir.Const{Value: 7, Width: 4}}},
				{Addr: 0x504, Stmt: ir.Return{}},
			}
			fn := ir.BuildFunction(0x500, instrs)

			mock := NewMockLoader(ctrl)
			mock.EXPECT().Function(ir.Addr(0x500)).Return(fn, true).AnyTimes()
			mock.EXPECT().SymbolName(gomock.Any()).Return("", false).AnyTimes()
			mock.EXPECT().ReadByte(gomock.Any()).Return(byte(0), false).AnyTimes()
			mock.EXPECT().EntryPoint().Return(ir.Addr(0x500)).AnyTimes()

			it := interp.NewBuilder().WithLoader(mock).Build()
			final := it.Run(0x500, 0x7000, 1, 0x8000, 0)

			reg, _ := absstate.LookupRegister("ECX")
			v := final.Read(absstate.RegisterRegionID, reg.AddrSI(), mock, nil)
			si, ok := v.Lookup(valueset.GlobalRegion)
			Expect(ok).To(BeTrue())
			val, ok := si.ConstValue()
			Expect(ok).To(BeTrue())
			Expect(val).To(Equal(int64(7)))
		})
	})
})
