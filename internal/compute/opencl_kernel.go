package compute

// nodeAccelerationSource computes one node's full acceleration delta per
// work item. It mirrors physics.NodeAcceleration in single precision.
const nodeAccelerationSource = `
#define GRAVITY -9.81f
#define FLOOR_Y -1.0f
#define WALL_V0 200.0f
#define WALL_DX 0.05f

float2 bond_force(float2 pi, float2 pj, float dx, float v0) {
    float2 dir = pj - pi;
    float l = length(dir);
    float r = dx / l;
    return dir * (3.0f * (v0 / dx) * (pown(r, 7) - pown(r, 13)) / l);
}

float2 repulsion_force(float2 pi, float2 pj, float dx, float v0) {
    float2 dir = pj - pi;
    float l = length(dir);
    return dir * (3.0f * (v0 / dx) * pown(dx / l, 13) / l);
}

__kernel void node_acceleration(
    const int n,
    __global const float2 *pos,
    __global const float2 *vel,
    __global const float *mass,
    __global const float *drag,
    __global const int *bond_offsets,
    __global const int *bond_indices,
    __global const float *bond_dx,
    __global const float *bond_v0,
    __global const int *coll_offsets,
    __global const int *coll_indices,
    const float rep_dx,
    const float rep_v0,
    __global float2 *out)
{
    int i = get_global_id(0);
    if (i >= n) {
        return;
    }

    float2 p = pos[i];
    float2 f = (float2)(0.0f, 0.0f);
    for (int k = bond_offsets[i]; k < bond_offsets[i + 1]; k++) {
        f += bond_force(p, pos[bond_indices[k]], bond_dx[k], bond_v0[k]);
    }
    for (int k = coll_offsets[i]; k < coll_offsets[i + 1]; k++) {
        f -= repulsion_force(p, pos[coll_indices[k]], rep_dx, rep_v0);
    }
    f -= repulsion_force(p, (float2)(p.x, FLOOR_Y), WALL_DX, WALL_V0);

    float2 v = vel[i];
    float2 a = f / mass[i] - v * length(v) * drag[i];
    a.y += GRAVITY;
    out[i] = a;
}
`
