package compiler

import (
	"github.com/jorgicor/bas55/internal/bytecode"
	"github.com/jorgicor/bas55/internal/vars"
)

// expr parses and emits a numeric expression:
//
//	expr     := term (('+' | '-') term)*
//	term     := unary (('*' | '/') unary)*
//	unary    := '-' unary | '+' unary | power
//	power    := primary ('^' unary)*
//	primary  := NUM | '(' expr ')' | numvar | numvar '(' subs ')' |
//	            FNx '(' expr ')' | ifun '(' expr ')' | RND
func (c *Compiler) expr() {
	c.term()
	for c.tok.Kind == TPlus || c.tok.Kind == TMinus {
		op := c.tok.Kind
		c.next()
		c.term()
		if op == TPlus {
			c.push(bytecode.Add)
		} else {
			c.push(bytecode.Sub)
		}
	}
}

func (c *Compiler) term() {
	c.unary()
	for c.tok.Kind == TStar || c.tok.Kind == TSlash {
		op := c.tok.Kind
		c.next()
		c.unary()
		if op == TStar {
			c.push(bytecode.Mul)
		} else {
			c.push(bytecode.Div)
		}
	}
}

func (c *Compiler) unary() {
	if c.tok.Kind == TMinus {
		c.next()
		c.unary()
		c.push(bytecode.Neg)
		return
	}
	if c.tok.Kind == TPlus {
		c.next()
		c.unary()
		return
	}
	c.power()
}

func (c *Compiler) power() {
	c.primary()
	for c.tok.Kind == TCaret {
		c.next()
		c.unary()
		c.push(bytecode.Pow)
	}
}

func (c *Compiler) primary() {
	switch c.tok.Kind {
	case TInt, TNum:
		n := c.tok.Num
		c.next()
		c.push(bytecode.PushNum)
		c.prog.EmitNum(n)

	case TLParen:
		c.next()
		c.expr()
		c.expect(TRParen, ErrSyntax)

	case TNumVar:
		v := vars.Coded(c.tok.Coded)
		c.next()
		if c.tok.Kind == TLParen {
			c.subscriptedGet(v)
			return
		}
		if c.isCurrentFuncParam(v) {
			c.push(bytecode.GetFnVar)
			c.prog.EmitID(c.curFunc.ParamPos)
			return
		}
		pos := c.resolveNumVar(v)
		c.push(bytecode.GetVar)
		c.prog.EmitID(pos)

	case TUsrFn:
		c.usrFnCall()

	case TIfun:
		c.ifunCall()

	default:
		c.error(ErrSyntax, "expected expression")
		c.next()
	}
}

func (c *Compiler) isCurrentFuncParam(v vars.Coded) bool {
	return c.inFunDef && v.IsNumeric() && !v.HasDigit() &&
		v.Letter() == c.curFunc.Param.Letter() && v.Suffix() == c.curFunc.Param.Suffix()
}

func (c *Compiler) subscriptedGet(v vars.Coded) {
	letter := v.Index1()
	c.next() // (
	c.expr()
	ndim := 1
	if c.tok.Kind == TComma {
		c.next()
		c.expr()
		ndim = 2
	}
	c.expect(TRParen, ErrSyntax)
	c.ensureArray(letter, ndim)
	if ndim == 1 {
		c.push(bytecode.GetList)
	} else {
		c.push(bytecode.GetTable)
	}
	c.prog.EmitID(letter)
}

// ifunArity maps an internal function's name to its arity (0 for
// RND, 1 for everything else), grounded on ifun.c's s_ifuns table.
var ifunArity = map[string]int{
	"ABS": 1, "ATN": 1, "COS": 1, "EXP": 1, "INT": 1, "LOG": 1,
	"SGN": 1, "SIN": 1, "SQR": 1, "TAN": 1, "RND": 0,
}

// ifunCode assigns each internal function a stable small integer, the
// IFUN0/IFUN1 opcode's operand.
var ifunCode = map[string]int{
	"ABS": 0, "ATN": 1, "COS": 2, "EXP": 3, "INT": 4, "LOG": 5,
	"RND": 6, "SGN": 7, "SIN": 8, "SQR": 9, "TAN": 10,
}

func (c *Compiler) ifunCall() {
	name := c.tok.Str
	c.next()
	arity := ifunArity[name]

	if arity == 0 {
		if c.tok.Kind == TLParen {
			c.error(ErrBadNParams, "RND takes no arguments")
			c.next()
			c.expr()
			c.expect(TRParen, ErrSyntax)
		}
		c.push(bytecode.Ifun0)
		c.prog.EmitID(ifunCode[name])
		return
	}

	c.expect(TLParen, ErrSyntax)
	c.expr()
	c.expect(TRParen, ErrSyntax)
	c.push(bytecode.Ifun1)
	c.prog.EmitID(ifunCode[name])
}

func (c *Compiler) usrFnCall() {
	name := c.tok.Str[0]
	c.next()

	fn, declared := c.prog.Funcs[name]
	if c.inFunDef && name == c.curFunc.Name {
		// A DEF FN body calling its own name can never be resolved to a
		// finished definition; the reference compiler reports it as an
		// undefined function rather than allowing unbounded GOSUB
		// recursion at run time. A cycle through other DEF FNs cannot
		// form, since a call to a function not yet defined on an earlier
		// line is already undeclared in the lookup above.
		declared = false
	}

	hasArg := c.tok.Kind == TLParen
	if hasArg {
		c.next()
		c.expr()
		c.expect(TRParen, ErrSyntax)
	}

	if !declared {
		c.error(ErrUndefFun, string(name))
		return
	}

	if hasArg {
		c.push(bytecode.LetVar)
		c.prog.EmitID(fn.ParamPos)
	} else if fn.Param != 0 {
		c.error(ErrBadNParams, string(name))
	}

	c.push(bytecode.Gosub)
	c.prog.EmitID(fn.PC)
}

// strExpr parses a string expression: a string variable or a quoted
// literal. ECMA-55 has no string
// concatenation or string arithmetic.
func (c *Compiler) strExpr() {
	switch c.tok.Kind {
	case TStrVar:
		v := vars.Coded(c.tok.Coded)
		c.next()
		pos := c.resolveStrVar(v)
		c.push(bytecode.GetStrVar)
		c.prog.EmitID(pos)
	case TQuotedStr:
		idx := c.prog.Strs.Intern(c.tok.Str)
		c.prog.Strs.Retain(idx)
		c.next()
		c.push(bytecode.PushStr)
		c.prog.EmitID(idx)
	default:
		c.error(ErrSyntax, "expected string expression")
		c.next()
	}
}
