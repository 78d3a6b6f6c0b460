// Package gates builds soft logic out of potential wells.
//
// Each gate is a single Hamiltonian term whose minimum lies where its output
// coordinate equals the Boolean function of its inputs, with logical 0 and 1
// at positions 0 and 1:
//
//	Memory    ½k(x−b)²
//	Not       ½k(x+y−1)²
//	And       ½k(z−xy)²
//	Or        ½k(z−x−y+xy)²
//	Xor       ½k(z−x−y+2xy)²
//	Range     ½k(x−lo)²(x−hi)²
//
// Builders only use the network's public surface (AddCoordinate and
// AddInteraction); nothing here reaches into the integrator.
package gates
